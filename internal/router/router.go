package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/config"
	"github.com/ItalcolColombia/miit-api-sub000/internal/handler"
	"github.com/ItalcolColombia/miit-api-sub000/internal/infra"
	"github.com/ItalcolColombia/miit-api-sub000/internal/middleware"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
	"github.com/ItalcolColombia/miit-api-sub000/internal/service"
	"github.com/ItalcolColombia/miit-api-sub000/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, extClient *infra.ExternalClient, extCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	pesadaRepo := repository.NewPesadaRepository(db)
	corteRepo := repository.NewPesadaCorteRepository(db)
	viajeRepo := repository.NewViajeRepository(db)
	flotaRepo := repository.NewFlotaRepository(db)
	tranRepo := repository.NewTransaccionRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	blRepo := repository.NewBlRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	ajusteRepo := repository.NewAjusteRepository(db)
	movRepo := repository.NewMovimientoRepository(db)
	almMatRepo := repository.NewAlmacenamientoMaterialRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg, dispatcher)
	auditoriaSvc := service.NewAuditoriaService(auditoriaRepo, dispatcher)
	ajusteSvc := service.NewAjusteService(ajusteRepo, movRepo, almMatRepo, auditoriaSvc)
	pesadaSvc := service.NewPesadaService(pesadaRepo, corteRepo, viajeRepo, tranRepo)
	envioSvc := service.NewEnvioService(extClient, extCB, corteRepo, usuarioRepo, cfg.EnvioConcurrencia)
	viajeSvc := service.NewViajeService(viajeRepo, flotaRepo, tranRepo, envioSvc)
	tranSvc := service.NewTransaccionService(tranRepo, viajeRepo)
	blSvc := service.NewBlService(blRepo, viajeRepo, materialRepo, clienteRepo)
	materialSvc := service.NewMaterialService(materialRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	pesadasH := handler.NewPesadasHandler(pesadaSvc, envioSvc)
	ajustesH := handler.NewAjustesHandler(ajusteSvc)
	auditoriaH := handler.NewAuditoriaHandler(auditoriaSvc)
	operadorH := handler.NewOperadorHandler(viajeSvc, blSvc)
	transaccionesH := handler.NewTransaccionesHandler(tranSvc)
	materialesH := handler.NewMaterialesHandler(materialSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, extCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/recuperar", middleware.LoginRateLimiter(), authH.RecuperarClave)
		auth.POST("/restablecer", middleware.LoginRateLimiter(), authH.RestablecerClave)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: bascula, operador, supervisor, administrador — per-endpoint
		v1.POST("/pesadas", middleware.RequireRole("bascula", "supervisor", "administrador"), pesadasH.CrearPesada)
		v1.GET("/pesadas", middleware.RequireRole("bascula", "operador", "supervisor", "administrador"), pesadasH.ListarPesadas)
		v1.GET("/pesadas/acumuladas/:puerto_id", middleware.RequireRole("operador", "supervisor", "administrador"), pesadasH.AcumularPesadas)
		v1.POST("/pesadas/envio-final/:puerto_id", middleware.RequireRole("operador", "supervisor", "administrador"), pesadasH.EnvioFinal)
		v1.GET("/pesadas/pendientes/:puerto_id", middleware.RequireRole("operador", "supervisor", "administrador"), pesadasH.PesadasParciales)
		v1.GET("/pesadas/ultimo-corte/:puerto_id/:transaccion", middleware.RequireRole("operador", "supervisor", "administrador"), pesadasH.UltimoCorte)
		v1.GET("/pesadas/identificador/:puerto_id/:transaccion", middleware.RequireRole("bascula", "operador", "supervisor", "administrador"), pesadasH.GenIdentificador)

		ajustes := v1.Group("/ajustes", middleware.RequireRole("supervisor", "administrador"))
		{
			ajustes.POST("", ajustesH.CrearAjuste)
			ajustes.GET("", ajustesH.ListarAjustes)
		}
		v1.GET("/movimientos", middleware.RequireRole("operador", "supervisor", "administrador"), ajustesH.ListarMovimientos)
		v1.GET("/saldos", middleware.RequireRole("operador", "supervisor", "administrador"), ajustesH.ListarSaldos)

		v1.GET("/auditoria", middleware.RequireRole("administrador"), auditoriaH.ListarAuditoria)

		operador := v1.Group("/operador", middleware.RequireRole("operador", "supervisor", "administrador"))
		{
			operador.POST("/viajes/buque", operadorH.CrearViajeBuque)
			operador.POST("/viajes/camion", operadorH.CrearViajeCamion)
			operador.GET("/viajes/:puerto_id", operadorH.GetViaje)
			operador.PUT("/viajes/:puerto_id/ingreso", operadorH.RegistrarIngreso)
			operador.PUT("/viajes/:puerto_id/salida", operadorH.RegistrarSalida)
			operador.PUT("/flota/:puerto_id/estado", operadorH.ChgEstadoFlota)
			operador.POST("/bls", operadorH.CrearBl)
			operador.PUT("/bls/estado-operador", operadorH.ChgEstadoBlOperador)
			operador.PUT("/bls/estado-puerto", operadorH.ChgEstadoBlPuerto)
			operador.GET("/bls/:puerto_id", operadorH.ListarBls)
		}

		trans := v1.Group("/transacciones", middleware.RequireRole("operador", "supervisor", "administrador"))
		{
			trans.POST("", transaccionesH.CrearTransaccion)
			trans.GET("", transaccionesH.ListarTransacciones)
			trans.GET("/:id", transaccionesH.GetTransaccion)
			trans.PUT("/:id/iniciar", transaccionesH.IniciarTransaccion)
			trans.PUT("/:id/finalizar", transaccionesH.FinalizarTransaccion)
		}

		v1.GET("/materiales", middleware.RequireRole("operador", "supervisor", "administrador"), materialesH.ListarMateriales)
		v1.POST("/materiales", middleware.RequireRole("administrador"), materialesH.CrearMaterial)

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
