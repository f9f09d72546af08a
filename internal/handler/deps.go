package handler

import (
	"github.com/1o0n1/structure/internal/app/realtime"
	"github.com/1o0n1/structure/internal/app/storage"
	"github.com/1o0n1/structure/internal/app/store"
	"github.com/1o0n1/structure/internal/configs"
	"github.com/1o0n1/structure/internal/pkg/pow"
)

type AppDeps struct {
	Config         *configs.AppConfig
	Store          *store.Store
	Registry       *realtime.Registry
	Coordinator    *realtime.Coordinator
	StorageService storage.StorageService
	PowManager     *pow.PoWManager
}
