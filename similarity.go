package vecdb

import "github.com/vecdbx/vecdb/pkg/index"

// SimilarityFunc scores how alike two embeddings of equal dimension are;
// higher is more similar.
type SimilarityFunc func(a, b []float64) float64

// CosineSimilarity is dot(a,b)/(‖a‖·‖b‖), 0 whenever either vector has zero
// norm. It is the only scoring function the index contract supports (see
// pkg/index), exported here so callers comparing chunk embeddings directly
// don't need to import the index package.
var CosineSimilarity SimilarityFunc = index.CosineSimilarity
