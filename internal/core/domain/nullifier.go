package domain

// Nullifier is a proof identifier consumed exactly once.
type Nullifier struct {
	Hash string
	// Processor that consumed the nullifier.
	Writer     string
	ConsumedAt int64
}

// NewNullifier ...
func NewNullifier(hash, writer string, consumedAt int64) (*Nullifier, error) {
	hash = NormalizeHash(hash)
	if !IsValidHash(hash) {
		return nil, ErrNullifierInvalid
	}
	return &Nullifier{hash, writer, consumedAt}, nil
}
