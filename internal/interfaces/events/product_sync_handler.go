package events

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/internal/domain/event"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// ProductSyncHandler proyecta los eventos de producto sobre la base query.
type ProductSyncHandler struct {
	queries repository.ProductQueryRepository
	sub     ports.EventSubscriber
	log     *logger.Logger
}

// NewProductSyncHandler construye el handler.
func NewProductSyncHandler(queries repository.ProductQueryRepository, sub ports.EventSubscriber, log *logger.Logger) *ProductSyncHandler {
	return &ProductSyncHandler{queries: queries, sub: sub, log: log}
}

// Start suscribe a los tres canales de producto (ver CategorySyncHandler.Start).
func (h *ProductSyncHandler) Start(ctx context.Context) error {
	if err := h.sub.Subscribe(ctx, event.ProductCreated, h.handleUpsert); err != nil {
		return err
	}
	if err := h.sub.Subscribe(ctx, event.ProductUpdated, h.handleUpsert); err != nil {
		return err
	}
	if err := h.sub.Subscribe(ctx, event.ProductDeleted, h.handleDelete); err != nil {
		return err
	}
	h.log.Info().Msg("sync handler de productos iniciado")
	return nil
}

// handleUpsert aplica created y updated por igual: upsert por ID.
func (h *ProductSyncHandler) handleUpsert(ctx context.Context, payload []byte) error {
	var p event.ProductPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		h.log.Error().Err(err).Msg("payload de producto inválido")
		return nil
	}
	if err := h.queries.Upsert(ctx, p.Entity()); err != nil {
		h.log.Error().Err(err).Str("product_id", p.ID).Msg("sincronizar producto")
		return nil
	}
	h.log.Debug().Str("product_id", p.ID).Msg("producto sincronizado")
	return nil
}

// handleDelete elimina la proyección; ausencia del ID no es error.
func (h *ProductSyncHandler) handleDelete(ctx context.Context, payload []byte) error {
	var p event.DeletedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		h.log.Error().Err(err).Msg("payload de producto eliminado inválido")
		return nil
	}
	if err := h.queries.Delete(ctx, p.ID); err != nil {
		h.log.Error().Err(err).Str("product_id", p.ID).Msg("eliminar proyección de producto")
		return nil
	}
	h.log.Debug().Str("product_id", p.ID).Msg("proyección de producto eliminada")
	return nil
}
