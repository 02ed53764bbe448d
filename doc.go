// Package trusstopo is a mass-targeted structural topology optimizer for
// 2D spring-trusses: starting from a dense grid of nodes connected by
// axial springs with prescribed supports and a point load, it iteratively
// removes the least-loaded material until a mass target is met, while
// keeping the remaining structure solvable and connected from supports to
// the loaded node.
//
// What is trusstopo?
//
//	A linear-elastic truss solver paired with a greedy, energy-guided
//	node-removal optimizer:
//
//	  - Element kernel: per-spring 4×4 stiffness and strain energy
//	  - Sparse assembler: global stiffness matrix + load vector
//	  - Direct solver: free-DOF partition, gonum-backed Cholesky/LU
//	  - Scoring: energy attribution, neighbor smoothing, removal cost
//	  - Reachability: protected-set connectivity, last-path masking, pruning
//	  - Driver: adaptive batch removal with rollback and stagnation escape
//
// Everything is organized under single-purpose subpackages:
//
//	structure/ — Node, Spring, Structure: the in-memory truss model
//	kernel/    — per-spring stiffness matrix and strain energy
//	assemble/  — sparse global K and load vector F
//	solve/     — boundary conditions and the direct linear solve
//	score/     — node removal scoring
//	reach/     — connectivity, last-path mask, degree pruning
//	optimize/  — the mass-targeted optimization driver
//
// trusstopo deliberately does not own a front-end, persistent storage,
// plotting, or grid/load construction — those are external collaborators
// that hand it a structure.Structure and read back the optimized result.
//
//	go get github.com/katalvlaran/trusstopo
package trusstopo
