// Package events contiene los sync handlers: suscriptores que proyectan los
// eventos del lado command sobre la base query. Son tolerantes a duplicados y a
// entrega fuera de orden porque la proyección se aplica por upsert.
package events

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/internal/domain/event"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// CategorySyncHandler proyecta los eventos de categoría sobre la base query.
type CategorySyncHandler struct {
	queries repository.CategoryQueryRepository
	sub     ports.EventSubscriber
	log     *logger.Logger
}

// NewCategorySyncHandler construye el handler.
func NewCategorySyncHandler(queries repository.CategoryQueryRepository, sub ports.EventSubscriber, log *logger.Logger) *CategorySyncHandler {
	return &CategorySyncHandler{queries: queries, sub: sub, log: log}
}

// Start suscribe a los tres canales de categoría. Debe ejecutarse al arrancar el
// proceso, antes de aceptar escrituras: no hay replay de lo publicado antes.
func (h *CategorySyncHandler) Start(ctx context.Context) error {
	if err := h.sub.Subscribe(ctx, event.CategoryCreated, h.handleUpsert); err != nil {
		return err
	}
	if err := h.sub.Subscribe(ctx, event.CategoryUpdated, h.handleUpsert); err != nil {
		return err
	}
	if err := h.sub.Subscribe(ctx, event.CategoryDeleted, h.handleDelete); err != nil {
		return err
	}
	h.log.Info().Msg("sync handler de categorías iniciado")
	return nil
}

// handleUpsert aplica created y updated por igual: upsert por ID. Todo fallo se
// registra y se descarta para no frenar los mensajes siguientes.
func (h *CategorySyncHandler) handleUpsert(ctx context.Context, payload []byte) error {
	var p event.CategoryPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		h.log.Error().Err(err).Msg("payload de categoría inválido")
		return nil
	}
	if err := h.queries.Upsert(ctx, p.Entity()); err != nil {
		h.log.Error().Err(err).Str("category_id", p.ID).Msg("sincronizar categoría")
		return nil
	}
	h.log.Debug().Str("category_id", p.ID).Msg("categoría sincronizada")
	return nil
}

// handleDelete elimina la proyección. Que el ID no exista no es error (evento
// duplicado o ya aplicado).
func (h *CategorySyncHandler) handleDelete(ctx context.Context, payload []byte) error {
	var p event.DeletedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		h.log.Error().Err(err).Msg("payload de categoría eliminada inválido")
		return nil
	}
	if err := h.queries.Delete(ctx, p.ID); err != nil {
		h.log.Error().Err(err).Str("category_id", p.ID).Msg("eliminar proyección de categoría")
		return nil
	}
	h.log.Debug().Str("category_id", p.ID).Msg("proyección de categoría eliminada")
	return nil
}
