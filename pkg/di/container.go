package di

import (
	"gorm.io/gorm"

	"thriftit/backend/internal/service"
	"thriftit/backend/internal/ws"
	"thriftit/backend/pkg/cache"
	"thriftit/backend/pkg/config"
	"thriftit/backend/pkg/jwt"
	"thriftit/backend/pkg/logger"
)

// Container holds all the dependencies for the application
type Container struct {
	DB              *gorm.DB
	Config          *config.Config
	Logger          *logger.Logger
	JWTService      *jwt.Service
	Cache           *cache.Cache
	UserService     *service.UserService
	MessageService  *service.MessageService
	ProductService  *service.ProductService
	WishlistService *service.WishlistService
	ImageService    *service.ImageService
	Presence        *ws.Presence
	Hub             *ws.Hub
}

// New creates a new dependency injection container. The hub is constructed
// but not started; callers run it once the container is assembled.
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) (*Container, error) {
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)

	var productCache *cache.Cache
	if cfg.Cache.Enabled {
		productCache = cache.New(cfg.Cache.TTL, cfg.Cache.PurgeWindow, cfg.Cache.MaxSize)
	}

	userService := service.NewUserService(db, jwtService)
	messageService := service.NewMessageService(db)
	productService := service.NewProductService(db, productCache)
	wishlistService := service.NewWishlistService(db)

	imageService, err := service.NewImageService(cfg.Uploads.Dir, cfg.Uploads.MaxSize)
	if err != nil {
		return nil, err
	}

	presence := ws.NewPresence(cfg.Presence.RedisAddr, cfg.Presence.TTL)
	hub := ws.NewHub(messageService, userService, presence, ws.Tuning{
		WriteWait:      cfg.Chat.WriteWait,
		PongWait:       cfg.Chat.PongWait,
		MaxFrameSize:   cfg.Chat.MaxFrameSize,
		SendBufferSize: cfg.Chat.SendBufferSize,
	})

	return &Container{
		DB:              db,
		Config:          cfg,
		Logger:          log,
		JWTService:      jwtService,
		Cache:           productCache,
		UserService:     userService,
		MessageService:  messageService,
		ProductService:  productService,
		WishlistService: wishlistService,
		ImageService:    imageService,
		Presence:        presence,
		Hub:             hub,
	}, nil
}
