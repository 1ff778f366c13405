package querytest

import (
	"go.uber.org/zap"
)

type Options struct {
	// Host to listen on
	Host string

	// Port to listen on, 0 picks a free port
	Port int

	// Reuseport controls setting SO_REUSEPORT
	Reuseport bool

	// Responder answers commands. Defaults to NewMux().
	Responder Responder

	// Welcome is the second greeting line
	Welcome string

	Log *zap.Logger
}
