package domain

import "errors"

// ErrRankingUnavailable indicates the capability ranking backend could not
// produce a usable ordering. Callers fall back to the heuristic order.
var ErrRankingUnavailable = errors.New("ranking unavailable")

// ErrLayerNotFound indicates no model layer has been published yet.
var ErrLayerNotFound = errors.New("model layer not found")

// ErrSchemaDrift reports a model layer whose top-level contract does not
// match what this version writes. A drifted layer is never overwritten.
var ErrSchemaDrift = errors.New("model layer schema drift")
