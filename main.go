package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-warden/api"
	api_i "github.com/beka-birhanu/vinom-warden/api/i"
	"github.com/beka-birhanu/vinom-warden/api/identity"
	"github.com/beka-birhanu/vinom-warden/api/session"
	"github.com/beka-birhanu/vinom-warden/audio"
	"github.com/beka-birhanu/vinom-warden/config"
	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/infrastruture/repo"
	"github.com/beka-birhanu/vinom-warden/infrastruture/timeline"
	"github.com/beka-birhanu/vinom-warden/infrastruture/token"
	"github.com/beka-birhanu/vinom-warden/infrastruture/worldcache"
	"github.com/beka-birhanu/vinom-warden/logger"
	"github.com/beka-birhanu/vinom-warden/service"
	"github.com/beka-birhanu/vinom-warden/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	operatorsCollection = "operators"
	timelineTTL         = 24 * time.Hour
)

// Global variables for dependencies
var (
	mongoClient       *mongo.Client
	redisClient       *redis.Client
	audioDevice       *audio.Device
	scenario          *config.Scenario
	operatorRepo      i.OperatorRepo
	worldCache        i.WorldCache
	transitionLog     i.Timeline
	sessionManager    *service.SessionManager
	worldService      i.WorldPreviewer
	jwtTokenizer      i.Tokenizer
	authService       i.Authenticator
	authController    api_i.Controller
	sessionController api_i.Controller
	router            *api.Router
	appLogger         *logger.Logger
)

func mustLogger(prefix, color string) *logger.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating %s logger: %v\n", prefix, err)
		os.Exit(1)
	}
	return l
}

func initScenario() {
	var err error
	scenario, err = config.LoadScenario(config.Envs.ScenarioPath)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Loading scenario: %v", err))
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("Scenario loaded: %d mazes, %d guards, seed %d",
		len(scenario.World.Mazes), scenario.Guards.Patrollers+scenario.Guards.Reserves, scenario.Seed))
}

func initOperatorRepo(ctx context.Context) {
	if config.Envs.DBURI == "" {
		operatorRepo = repo.NewMemoryOperatorRepo()
		appLogger.Warning("DB_URI not set, operators are kept in memory")
		return
	}

	var err error
	mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(config.Envs.DBURI))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}

	mongoRepo := repo.NewOperatorRepo(mongoClient, config.Envs.DBName, operatorsCollection)
	if err = mongoRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Creating operator indexes: %v", err))
		os.Exit(1)
	}
	operatorRepo = mongoRepo
	appLogger.Info("Connected to MongoDB")
}

func initRedis(ctx context.Context) {
	if config.Envs.RedisAddr == "" {
		worldCache = worldcache.NewMemoryCache()
		transitionLog = timeline.NewMemoryTimeline()
		appLogger.Warning("REDIS_ADDR not set, world cache and timeline are kept in memory")
		return
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}

	worldCache = worldcache.NewRedisCache(redisClient)
	transitionLog = timeline.NewRedisTimeline(redisClient, timelineTTL)
	appLogger.Info("Connected to Redis")
}

func newAlarmFactory() func() game.Alarm {
	if !config.Envs.AudioEnabled {
		return func() game.Alarm { return audio.Nop{} }
	}
	audioDevice = audio.NewDevice()
	appLogger.Info("Alarm siren enabled")
	return func() game.Alarm { return audioDevice.NewAlarm() }
}

func initSessionManager() {
	var err error
	sessionManager, err = service.NewSessionManager(&service.SessionManagerConfig{
		MaxSessions: config.Envs.MaxSessions,
		Timeline:    transitionLog,
		NewAlarm:    newAlarmFactory(),
		Logger:      mustLogger("SESSION-MANAGER", config.ColorCyan),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initWorldService() {
	var err error
	worldService, err = service.NewWorldService(&service.WorldServiceConfig{
		Cache:  worldCache,
		Logger: mustLogger("WORLD", config.ColorPurple),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating world service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("World service initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	var err error
	authService, err = service.NewAuthService(operatorRepo, jwtTokenizer)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating auth service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Auth service initialized")
}

func initControllers() {
	authController = identity.NewIdentityServer(authService)

	var err error
	sessionController, err = session.NewController(sessionManager, worldService, scenario)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Controllers initialized")
}

func initRouter(t i.Tokenizer) {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{authController, sessionController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func main() {
	if err := logger.Configure(config.Envs.LogLevel, config.Envs.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "configuring logger: %v\n", err)
	}
	appLogger = mustLogger("APP", config.ColorGreen)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	initScenario()
	initOperatorRepo(setupCtx)
	defer func() {
		if mongoClient != nil {
			_ = mongoClient.Disconnect(context.Background())
		}
	}()
	initRedis(setupCtx)
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	initSessionManager()
	defer func() {
		if audioDevice != nil {
			audioDevice.Close()
		}
	}()
	defer sessionManager.StopAll()

	initWorldService()
	initJWTTokenizer()
	initAuthService()
	initControllers()
	initRouter(jwtTokenizer)

	appLogger.With("addr", fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort)).Info("Serving")
	if err := router.Run(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Running server: %v", err))
	}
	appLogger.Info("Shutting down")
}
