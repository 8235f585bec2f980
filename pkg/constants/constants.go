package constants

type ContextKey string

const (
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	AppKey       ContextKey = "app"
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	UserKey      ContextKey = "user"
	SessionKey   ContextKey = "session"
	ChurchIDKey  ContextKey = "churchID"
	RequestStart ContextKey = "requestStart"
)
