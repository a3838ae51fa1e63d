package middleware

import (
	"github.com/TRI-AMDD/causeway/backend/internal/util"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/TRI-AMDD/causeway/backend/pkg/ai"
	oai "github.com/TRI-AMDD/causeway/backend/pkg/ai/ollama"
	gai "github.com/TRI-AMDD/causeway/backend/pkg/ai/openai"
	"github.com/TRI-AMDD/causeway/backend/pkg/logger"
)

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

type App struct {
	DBConn         *pgxpool.Pool
	Queue          *amqp091.Channel
	Key            *keyfunc.Keyfunc
	AiClient       ai.Client
	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	key *keyfunc.Keyfunc,
	masterAPIKey string,
	masterUserID int64,
	masterUserRole string,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			adapter := util.GetEnv("AI_ADAPTER")
			var aiClient ai.Client

			switch adapter {
			case "ollama":
				client, err := oai.NewOllamaClient(oai.NewOllamaClientParams{
					ProposerModel: util.GetEnv("AI_CHAT_MODEL"),
					CriticModel:   util.GetEnv("AI_CRITIC_MODEL"),

					BaseURL: util.GetEnv("AI_CHAT_URL"),
					ApiKey:  util.GetEnv("AI_CHAT_KEY"),

					MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
				})
				if err != nil {
					logger.Fatal("Failed to create Ollama client", "err", err)
				}
				aiClient = client
			default:
				aiClient = gai.NewOpenAIClient(gai.NewOpenAIClientParams{
					ProposerModel: util.GetEnv("AI_CHAT_MODEL"),
					CriticModel:   util.GetEnv("AI_CRITIC_MODEL"),

					ChatURL: util.GetEnv("AI_CHAT_URL"),
					ChatKey: util.GetEnv("AI_CHAT_KEY"),
				})
			}

			appContext := &AppContext{
				Context: c,
				App: &App{
					DBConn:         db,
					Queue:          queue,
					Key:            key,
					AiClient:       aiClient,
					MasterAPIKey:   masterAPIKey,
					MasterUserID:   masterUserID,
					MasterUserRole: masterUserRole,
				},
			}

			return next(appContext)
		}
	}
}
