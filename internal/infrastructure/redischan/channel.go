// Package redischan implementa el canal de eventos sobre Redis pub/sub.
// Entrega at-most-once por suscriptor vivo: no hay backlog ni replay, lo publicado
// sin suscriptores conectados se pierde.
package redischan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

var _ ports.EventPublisher = (*Channel)(nil)
var _ ports.EventSubscriber = (*Channel)(nil)

// Channel canal de eventos con dos conexiones de vida larga: una para publicar y
// otra para suscribirse (una conexión en modo subscribe no puede publicar).
// La reconexión usa backoff exponencial acotado (50ms a 2s).
type Channel struct {
	log *logger.Logger
	pub *redis.Client
	sub *redis.Client
}

// New conecta ambos clientes y verifica con ping.
func New(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*Channel, error) {
	opts := func() *redis.Options {
		return &redis.Options{
			Addr:            cfg.Addr,
			Password:        cfg.Password,
			DB:              cfg.DB,
			DialTimeout:     5 * time.Second,
			MinRetryBackoff: 50 * time.Millisecond,
			MaxRetryBackoff: 2 * time.Second,
		}
	}
	pub := redis.NewClient(opts())
	sub := redis.NewClient(opts())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pub.Ping(pingCtx).Err(); err != nil {
		_ = pub.Close()
		_ = sub.Close()
		return nil, fmt.Errorf("ping redis (pub): %w", err)
	}
	if err := sub.Ping(pingCtx).Err(); err != nil {
		_ = pub.Close()
		_ = sub.Close()
		return nil, fmt.Errorf("ping redis (sub): %w", err)
	}

	return &Channel{
		log: log,
		pub: pub,
		sub: sub,
	}, nil
}

// Publish serializa el payload a JSON y lo envía al canal. No espera a que exista
// ningún suscriptor. El error se reporta al caller, que decide reintentar o asumir
// la divergencia.
func (c *Channel) Publish(ctx context.Context, channel string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializar payload para %s: %w", channel, err)
	}
	if err := c.pub.Publish(ctx, channel, raw).Err(); err != nil {
		return fmt.Errorf("publicar en %s: %w", channel, err)
	}
	c.log.Debug().Str("channel", channel).RawJSON("payload", raw).Msg("evento publicado")
	return nil
}

// Subscribe registra el handler para todos los mensajes posteriores del canal y
// retorna cuando la suscripción quedó confirmada en el servidor. Los mensajes se
// procesan de a uno en orden de llegada; un fallo del handler se registra y no
// corta el loop. El loop termina al cancelar ctx.
func (c *Channel) Subscribe(ctx context.Context, channel string, handler ports.MessageHandler) error {
	ps := c.sub.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("suscribir a %s: %w", channel, err)
	}

	go func() {
		defer func() { _ = ps.Close() }()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				if err := handler(ctx, []byte(m.Payload)); err != nil {
					c.log.Error().Err(err).Str("channel", channel).Msg("procesar mensaje")
				}
			}
		}
	}()

	c.log.Info().Str("channel", channel).Msg("suscripción activa")
	return nil
}

// Close cierra ambas conexiones.
func (c *Channel) Close() error {
	pubErr := c.pub.Close()
	subErr := c.sub.Close()
	if pubErr != nil {
		return pubErr
	}
	return subErr
}
