// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strings"
	"sync/atomic"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/pkg/nacos"

	"github.com/nacos-group/nacos-sdk-go/v2/clients/config_client"
	"github.com/nacos-group/nacos-sdk-go/v2/vo"
	"gopkg.in/yaml.v3"
)

// Config 是全量的服务配置。
// 本地 YAML 提供默认值，Nacos 配置中心（若开启）可以热覆盖。
type Config struct {
	App struct {
		// GatewayTimeoutMs 是订单侧调用库存网关的单次请求超时
		GatewayTimeoutMs int `yaml:"gatewayTimeoutMs"`
		// LockWaitTimeoutMs 是获取单 SKU 锁的最长等待时间，超时返回 ErrLockTimeout
		LockWaitTimeoutMs int `yaml:"lockWaitTimeoutMs"`
		// LockBackend 选择行锁实现: "db" 直接用数据库行锁, "zookeeper" 叠加分布式锁
		LockBackend string `yaml:"lockBackend"`
		// StockCacheTTLSeconds 库存读缓存的过期时间，0 表示关闭缓存
		StockCacheTTLSeconds int `yaml:"stockCacheTTLSeconds"`
		// RestockRules 是一组 CEL 表达式，命中任意一条即发出补货告警事件
		RestockRules []string `yaml:"restockRules"`
	} `yaml:"app"`
	Infra struct {
		MySQL struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers string `yaml:"brokers"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Zookeeper struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"zookeeper"`
	} `yaml:"infra"`
}

var (
	currentConfig     atomic.Value // *Config
	nacosConfigClient config_client.IConfigClient
)

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.GatewayTimeoutMs = 3000
	cfg.App.LockWaitTimeoutMs = 5000
	cfg.App.LockBackend = "db"
	cfg.App.StockCacheTTLSeconds = 30
	cfg.Infra.MySQL.DSN = getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/stockpile?parseTime=true")
	cfg.Infra.Redis.Addrs = getEnv("REDIS_ADDRS", "localhost:6379")
	cfg.Infra.Kafka.Brokers = getEnv("KAFKA_BROKERS", "localhost:9092")
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	cfg.Infra.Zookeeper.Addrs = getEnv("ZOOKEEPER_ADDRS", "localhost:2181")
	return cfg
}

// Init 加载配置：默认值 <- 本地文件 <- Nacos 配置中心。
// 必须在 StartService 之前调用。
func Init() {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Logger.Fatal().Err(err).Str("path", path).Msg("cannot read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			logger.Logger.Fatal().Err(err).Str("path", path).Msg("cannot parse config file")
		}
	}
	currentConfig.Store(cfg)

	// 配置中心是可选的，没配 DataId 就只用本地配置
	dataId := os.Getenv("NACOS_CONFIG_DATA_ID")
	if dataId == "" {
		return
	}
	group := getEnv("NACOS_GROUP", "DEFAULT_GROUP")

	client, err := nacos.NewConfigClient(
		getEnv("NACOS_SERVER_ADDRS", "localhost:8848"),
		os.Getenv("NACOS_NAMESPACE"),
	)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("nacos config client unavailable, using local config only")
		return
	}
	nacosConfigClient = client

	if content, err := client.GetConfig(vo.ConfigParam{DataId: dataId, Group: group}); err == nil && content != "" {
		applyRemoteConfig(content)
	}

	err = client.ListenConfig(vo.ConfigParam{
		DataId: dataId,
		Group:  group,
		OnChange: func(namespace, group, dataId, data string) {
			logger.Logger.Info().Str("dataId", dataId).Msg("remote config changed, reloading")
			applyRemoteConfig(data)
		},
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("failed to listen for config changes")
	}
}

// applyRemoteConfig 在默认值之上套用远端配置并原子替换。
func applyRemoteConfig(content string) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		logger.Logger.Error().Err(err).Msg("invalid remote config, keeping current one")
		return
	}
	currentConfig.Store(cfg)
}

// GetCurrentConfig 返回当前配置快照，任何 goroutine 可随时调用。
func GetCurrentConfig() *Config {
	if cfg, ok := currentConfig.Load().(*Config); ok {
		return cfg
	}
	cfg := defaultConfig()
	currentConfig.Store(cfg)
	return cfg
}

// KafkaBrokers 把逗号分隔的 broker 列表拆成切片。
func KafkaBrokers(cfg *Config) []string {
	return strings.Split(cfg.Infra.Kafka.Brokers, ",")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
