package main

import (
	"math/rand"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/notification"
	"app/internal/payment"
	"app/internal/promo"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
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
	// .envは無くても環境変数が揃っていればよい
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.InventoryAdjustment{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	// CartGormRepositoryはCartとCartItemの両方を実装する
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.AccessTokenTTLMin) * time.Minute,
	}

	//refresh TTL
	refreshTTL := time.Duration(cfg.RefreshTokenTTLDays) * 24 * time.Hour

	//プロモコード表（設定から構築）
	rules := make(map[string]promo.Rule, len(cfg.PromoCodes))
	for _, spec := range cfg.PromoCodes {
		rules[spec.Code] = promo.Rule{
			Kind:  promo.RuleKind(spec.Kind),
			Value: spec.Value,
		}
	}
	promoEval := promo.NewEvaluator(rules)

	//決済シミュレータ
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	paySim := payment.NewSimulator(rng, clock, cfg.PaymentDeclinePercent)

	//注文確認の通知
	notifier := notification.NewLogNotifier()

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, verifier, issuer, idGen, clock, refreshTTL)
	refreshUC := auth.NewRefreshUsecase(userRepo, rtRepo, issuer, idGen, clock, refreshTTL)
	logoutUC := auth.NewLogoutUsecase(rtRepo)
	profileUC := auth.NewProfileUsecase(userRepo)

	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(
		txManager,
		userRepo,
		promoEval,
		paySim,
		notifier,
		cfg.TaxRatePercent,
		cfg.ShippingFee,
	)
	orderUC := usecase.NewOrderUsecase(txManager)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager)

	//Handler生成
	authH := handler.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, profileUC, refreshTTL)
	productH := handler.NewProductHandler(productUC)
	cartH := handler.NewCartHandler(cartUC)
	orderH := handler.NewOrderHandler(checkoutUC, orderUC)
	adminProductH := handler.NewAdminProductHandler(productUC)
	adminOrderH := handler.NewAdminOrderHandler(adminOrderUC)

	//Server起動
	e := server.New()
	server.RegisterRoutes(e, cfg, authH, productH, cartH, orderH, adminProductH, adminOrderH)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(e, addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
