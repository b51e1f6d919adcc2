// Package cache expone Redis como fiber.Storage para el rate limiter compartido entre réplicas.
package cache

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

var _ fiber.Storage = (*RedisStorage)(nil)

// opTimeout tope por operación; el limiter corre en el camino de cada request.
const opTimeout = 500 * time.Millisecond

// RedisStorage falla en abierto: si Redis no responde, Get se comporta como miss
// y Set/Delete no devuelven error, así una caída de Redis no tumba la API.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage crea el cliente. prefix aísla las claves de este servicio.
func NewRedisStorage(addr, password string, db int, prefix string) *RedisStorage {
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			DialTimeout:  opTimeout,
			ReadTimeout:  opTimeout,
			WriteTimeout: opTimeout,
		}),
		prefix: prefix,
	}
}

// Ping verifica conectividad al arrancar (solo informativo).
func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStorage) key(k string) string { return s.prefix + k }

func ctxTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// Get devuelve nil si la clave no existe o Redis no está disponible.
func (s *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := ctxTimeout()
	defer cancel()
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		// redis.Nil o error de red: miss
		return nil, nil
	}
	return val, nil
}

// Set guarda con TTL; exp 0 = sin expiración.
func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := ctxTimeout()
	defer cancel()
	_ = s.client.Set(ctx, s.key(key), val, exp).Err()
	return nil
}

// Delete elimina la clave ignorando errores de Redis.
func (s *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := ctxTimeout()
	defer cancel()
	_ = s.client.Del(ctx, s.key(key)).Err()
	return nil
}

// Reset borra solo las claves con el prefijo propio.
func (s *RedisStorage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*opTimeout)
	defer cancel()
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		_ = s.client.Del(ctx, iter.Val()).Err()
	}
	// Errores de SCAN se ignoran igual que en Set/Delete.
	_ = iter.Err()
	return nil
}

// Close cierra el cliente.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
