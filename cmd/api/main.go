package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/momo"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
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
	// .envはローカル開発用。なくても環境変数があれば動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.Promotion{},
		&model.UserPromotion{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	promotionRepo := infraRepo.NewPromotionGormRepository(gormDB)
	userPromotionRepo := infraRepo.NewUserPromotionGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := &realClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := newJWTIssuer(cfg.JWTSecret)
	momoClient := momo.NewClient(cfg.MoMo.Endpoint, 30*time.Second)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	productUC := usecase.NewProductUsecase(productRepo)
	paymentUC := usecase.NewPaymentUsecase(txManager, userRepo, momoClient, cfg.MoMo, logger)
	settlementUC := usecase.NewSettlementUsecase(txManager, cfg.MoMo, logger)
	promotionUC := usecase.NewPromotionUsecase(promotionRepo, userPromotionRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager)

	//Handler生成
	handlers := server.Handlers{
		Auth:       handler.NewAuthHandler(registerUC, loginUC),
		Product:    handler.NewProductHandler(productUC),
		Payment:    handler.NewPaymentHandler(paymentUC, settlementUC),
		Promotion:  handler.NewPromotionHandler(promotionUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC),
	}

	//Server起動
	if err := server.Start(cfg, handlers); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
