package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalid            = errors.New("invalid input")
	ErrUnparseableContent = errors.New("unparseable content")
	ErrNoDevice           = errors.New("audio device unavailable")
	ErrNotVoice           = errors.New("item is not a voice recording")
)
