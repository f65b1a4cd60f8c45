package service

import (
	"github.com/facturechain/facturechain/anchor"
	"github.com/facturechain/facturechain/db/stores"
	"github.com/rs/zerolog"
)

// FacturechainService carries the dependencies shared by all operations.
// Stores and the anchorer are injected once at process start.
type FacturechainService struct {
	Config   *Config
	Stores   *stores.Stores
	Anchorer anchor.Anchorer
	Logger   zerolog.Logger
}
