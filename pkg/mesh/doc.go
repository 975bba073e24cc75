// Package mesh defines the triangle mesh model shared by the hull builder and
// the subdivider: a binned vertex pool, triangles stored in an arena and
// referenced by index, and the adjacency graph between them.
//
// Triangles are wound counter-clockwise when seen from outside. Adj[i] is the
// triangle across the edge (V[i], V[(i+1)%3]); None marks a boundary edge.
package mesh
