// Package recipe defines the rock recipe book for talus.
// A recipe names one output mesh: a seed source (a point cloud, an SDF
// solid or the convex hull of either) followed by an ordered list of
// refinement stages. Books are produced by the Lisp engine and consumed by
// the generator; neither mutates them after evaluation.
package recipe
