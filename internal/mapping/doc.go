// Package mapping implements the occupancy-grid mapping engine: ray
// geometry, grid-cell line traversal, collision resolution against a
// ground-truth obstacle map, the inverse sensor model, and the log-odds
// occupancy grid itself.
//
// The engine is a synchronous pipeline. One pose step is fully folded into
// the grid before the next begins; the OccupancyGrid serialises its own
// mutation internally so concurrent readers (renderers, persistence) see a
// consistent view. Pose estimation, storage, and rendering live outside this
// package — callers feed in poses and (bearing, range) samples and read back
// per-cell occupancy probabilities.
package mapping
