// import_catalog da de alta productos desde un catálogo XML exportado por el sistema anterior.
//
// Uso: go run ./cmd/import_catalog [ruta/catalogo.xml]
// Por defecto busca catalogo.xml en el directorio actual. Usa la misma configuración que la API
// (DATABASE_URL, INVENTORY_STORE, ...). Los códigos ya existentes se omiten.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/catalogfile"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/storage"
	"github.com/jhoicas/bodegas-api/pkg/config"
	"github.com/jhoicas/bodegas-api/pkg/logger"
)

func main() {
	path := "catalogo.xml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("abrir catálogo")
	}
	defer f.Close()

	items, err := catalogfile.Decode(f)
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.Close()

	products := usecase.NewProductUseCase(store.Products, store.Warehouses, store.Stocks, store.TxRunner, log)
	var created, skipped int
	for _, it := range items {
		_, err := products.Create(ctx, dto.CreateProductRequest{
			Code:        it.Code,
			Name:        it.Name,
			Barcode:     it.Barcode,
			Category:    it.Category,
			Subcategory: it.Subcategory,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
		default:
			log.Error().Err(err).Str("code", it.Code).Msg("producto no importado")
		}
	}
	log.Info().Int("leidos", len(items)).Int("creados", created).Int("omitidos", skipped).Msg("importación terminada")
}
