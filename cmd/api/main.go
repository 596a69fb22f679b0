package main

import (
	"context"
	"log"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//Postgres接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Address{},
		&model.Product{},
		&model.VehicleBrand{},
		&model.VehicleModel{},
		&model.ProductFitment{},
		&model.PaymentMethod{},
		&model.Coupon{},
		&model.Promotion{},
		&model.PromotionProduct{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderStatusEvent{},
		&model.Return{},
		&model.ReturnItem{},
		&model.Supplier{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//カート用Mongo接続＋TTLインデックス
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cartColl, closeMongo, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCartCollection)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer func() { _ = closeMongo(context.Background()) }()

	cartTTL := time.Duration(cfg.CartTTLHours) * time.Hour
	if err := db.EnsureCartIndexes(ctx, cartColl, cartTTL); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	//Redisはあればキャッシュ、無ければnoop
	var cartCache cache.CartCache = cache.NoopCartCache{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, continuing without cart cache: %v", err)
		} else {
			cartCache = cache.NewRedisCartCache(rdb, 15*time.Minute)
		}
	}

	//Repository（GORM/Mongo実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	promotionRepo := infraRepo.NewPromotionGormRepository(gormDB)
	supplierRepo := infraRepo.NewSupplierGormRepository(gormDB)
	vehicleRepo := infraRepo.NewVehicleGormRepository(gormDB)
	paymentMethodRepo := infraRepo.NewPaymentMethodGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	cartRepo := infraRepo.NewCartMongoRepository(cartColl)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := auth.SystemClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := newJWTIssuer(cfg.JWTSecret)
	shipping := usecase.FlatRateShipping{Rate: cfg.ShippingFlatRate}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, cartCache)
	orderUC := usecase.NewOrderUsecase(txManager, cartRepo, cartCache, addressRepo, paymentMethodRepo, shipping)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo)
	vehicleUC := usecase.NewVehicleUsecase(vehicleRepo, productRepo)
	couponUC := usecase.NewCouponUsecase(couponRepo)
	promotionUC := usecase.NewPromotionUsecase(promotionRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	supplierUC := usecase.NewSupplierUsecase(supplierRepo)
	returnUC := usecase.NewReturnUsecase(txManager, auditRepo)
	paymentMethodUC := usecase.NewPaymentMethodUsecase(paymentMethodRepo)
	dashboardUC := usecase.NewDashboardUsecase(orderRepo, productRepo, auditRepo)

	//Handler生成＋ルート登録
	e := server.New(cfg)
	server.RegisterRoutes(e, cfg, userRepo, server.Handlers{
		Auth:           handler.NewAuthHandler(registerUC, loginUC),
		Product:        handler.NewProductHandler(productUC),
		Cart:           handler.NewCartHandler(cartUC),
		Vehicle:        handler.NewVehicleHandler(vehicleUC),
		Coupon:         handler.NewCouponHandler(couponUC),
		Order:          handler.NewOrderHandler(orderUC, paymentMethodUC),
		Address:        handler.NewAddressHandler(addressUC),
		Return:         handler.NewReturnHandler(returnUC),
		AdminProduct:   handler.NewAdminProductHandler(productUC, vehicleUC),
		AdminOrder:     handler.NewAdminOrderHandler(adminOrderUC),
		AdminPromotion: handler.NewAdminPromotionHandler(couponUC, promotionUC),
		AdminSupplier:  handler.NewAdminSupplierHandler(supplierUC),
		AdminReturn:    handler.NewAdminReturnHandler(returnUC),
		AdminDashboard: handler.NewAdminDashboardHandler(dashboardUC, cfg.LowStockThreshold),
	})

	if err := server.Start(e, cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
