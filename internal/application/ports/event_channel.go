package ports

import "context"

// MessageHandler procesa un mensaje recibido en un canal. Un error del handler se
// registra y se descarta: nunca corta la suscripción.
type MessageHandler func(ctx context.Context, payload []byte) error

// EventPublisher puerto de publicación de eventos de sincronización. Los casos de
// uso publican después de confirmar la escritura en la base command.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// EventSubscriber puerto de suscripción. Subscribe registra el handler y retorna
// cuando la suscripción quedó activa; la entrega es asíncrona. No hay replay: lo
// publicado antes de suscribirse se pierde.
type EventSubscriber interface {
	Subscribe(ctx context.Context, channel string, handler MessageHandler) error
}
