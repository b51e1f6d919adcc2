// seed aplica el esquema y crea un administrador y productos de demostración.
//
// Uso: go run ./cmd/seed
// Variables: las mismas de la API más SEED_ADMIN_EMAIL y SEED_ADMIN_PASSWORD.
package main

import (
	"context"
	"os"
	"time"

	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Tienda-api/pkg/config"
	"github.com/jhoicas/Tienda-api/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var demoProducts = []entity.Product{
	{Name: "Taza de cerámica", Description: "Taza blanca de 350 ml", Price: decimal.RequireFromString("9.99"), Inventory: 50, Category: "hogar",
		Images: []string{"https://picsum.photos/seed/taza/600/600"}},
	{Name: "Lámpara de escritorio", Description: "LED regulable", Price: decimal.RequireFromString("45.00"), Inventory: 12, Category: "hogar",
		Images: []string{"https://picsum.photos/seed/lampara/600/600"}},
	{Name: "Auriculares inalámbricos", Description: "Bluetooth 5.3, 30 h de batería", Price: decimal.RequireFromString("79.90"), Inventory: 8, Category: "electronica",
		Images: []string{"https://picsum.photos/seed/auriculares/600/600"}},
	{Name: "Mochila urbana", Description: "Compartimento para portátil de 15\"", Price: decimal.RequireFromString("39.50"), Inventory: 20, Category: "accesorios"},
	{Name: "Cuaderno A5", Description: "Tapa dura, 192 hojas", Price: decimal.RequireFromString("6.25"), Inventory: 3, Category: "papeleria"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	users := postgres.NewUserRepository(pool)
	email := envOr("SEED_ADMIN_EMAIL", "admin@tienda.local")
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		log.Fatal().Err(err).Msg("consultar administrador")
	}
	if existing == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(envOr("SEED_ADMIN_PASSWORD", "admin123")), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("hash de contraseña")
		}
		admin := &entity.User{Name: "Administrador", Email: email, PasswordHash: string(hash), Role: entity.RoleAdmin}
		if err := users.Create(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("crear administrador")
		}
		log.Info().Int64("id", admin.ID).Str("email", email).Msg("administrador creado")
	} else {
		log.Info().Str("email", email).Msg("administrador ya existe")
	}

	products := postgres.NewProductRepository(pool)
	_, total, err := products.List(ctx, entity.ProductFilter{Limit: 1})
	if err != nil {
		log.Fatal().Err(err).Msg("listar productos")
	}
	if total > 0 {
		log.Info().Int("total", total).Msg("catálogo ya poblado, no se insertan productos")
		return
	}
	for i := range demoProducts {
		p := demoProducts[i]
		if err := products.Create(ctx, &p); err != nil {
			log.Fatal().Err(err).Str("producto", p.Name).Msg("crear producto")
		}
	}
	log.Info().Int("productos", len(demoProducts)).Msg("seed completado")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
