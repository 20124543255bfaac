package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config 应用配置结构
type Config struct {
	// 外部工具设置
	Tools ToolsConfig `mapstructure:"tools"`

	// 输出设置
	Output OutputConfig `mapstructure:"output"`

	// 转换设置
	Conversion ConversionConfig `mapstructure:"conversion"`

	// 状态存储设置
	State StateConfig `mapstructure:"state"`

	// 安全设置
	Security SecurityConfig `mapstructure:"security"`

	// 日志设置
	Logging LoggingConfig `mapstructure:"logging"`

	// 高级设置
	Advanced AdvancedConfig `mapstructure:"advanced"`
}

// ToolsConfig 外部工具配置
type ToolsConfig struct {
	// 后端选择: auto, sips, builtin
	Backend string `mapstructure:"backend"`

	// sips路径
	SipsPath string `mapstructure:"sips_path"`

	// 单次工具调用超时 (秒)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	// 资源集模式子目录名
	AssetsFolder string `mapstructure:"assets_folder"`

	// 适配模式子目录名
	ResizedFolder string `mapstructure:"resized_folder"`
}

// ConversionConfig 转换配置
type ConversionConfig struct {
	// 可接受的图片扩展名（目录展开时使用）
	ImageExtensions []string `mapstructure:"image_extensions"`
}

// StateConfig 状态数据库配置
type StateConfig struct {
	// bbolt数据库路径，为空时使用 ~/.sizely/state.db
	DBPath string `mapstructure:"db_path"`

	// 保留的运行历史条数
	HistoryLimit int `mapstructure:"history_limit"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	// 运行前检查磁盘空间
	CheckDiskSpace bool `mapstructure:"check_disk_space"`

	// 最小剩余空间 (MB)
	MinFreeMB int `mapstructure:"min_free_mb"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	// 日志级别 (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// 是否启用文件日志
	EnableFile bool `mapstructure:"enable_file"`

	// 日志目录
	LogDir string `mapstructure:"log_dir"`
}

// AdvancedConfig 高级配置
type AdvancedConfig struct {
	// 是否启用配置热重载
	EnableHotReload bool `mapstructure:"enable_hot_reload"`
}

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	var builder strings.Builder
	builder.WriteString("invalid config [")
	builder.WriteString(e.Field)
	builder.WriteString("]: ")
	builder.WriteString(e.Message)
	builder.WriteString(" (value: ")
	builder.WriteString(fmt.Sprint(e.Value))
	builder.WriteString(")")
	return builder.String()
}

// ConfigManager 配置管理器
type ConfigManager struct {
	config     *Config
	viper      *viper.Viper
	logger     *zap.Logger
	mutex      sync.RWMutex
	watchers   []ConfigWatcher
	configFile string
}

// ConfigWatcher 配置变更监听器
type ConfigWatcher interface {
	OnConfigChange(oldConfig, newConfig *Config) error
}

// NewConfigManager 创建配置管理器
func NewConfigManager(configFile string, logger *zap.Logger) (*ConfigManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &ConfigManager{
		viper:      viper.New(),
		logger:     logger,
		configFile: configFile,
	}

	if err := cm.loadConfig(); err != nil {
		return nil, err
	}

	return cm, nil
}

// loadConfig 加载配置
func (cm *ConfigManager) loadConfig() error {
	// .env 文件不存在时忽略
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		cm.logger.Debug("读取.env失败", zap.Error(err))
	}

	setDefaults(cm.viper)

	if cm.configFile != "" {
		cm.viper.SetConfigFile(cm.configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		cm.viper.AddConfigPath(home)
		cm.viper.AddConfigPath(".")
		cm.viper.SetConfigName(".sizely")
		cm.viper.SetConfigType("yaml")
	}

	cm.viper.SetEnvPrefix("SIZELY")
	cm.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cm.viper.AutomaticEnv()

	if err := cm.viper.ReadInConfig(); err != nil {
		if !isConfigNotFound(err) {
			return err
		}
		// 配置文件不存在，使用默认配置
	}

	var config Config
	if err := cm.viper.Unmarshal(&config); err != nil {
		return err
	}

	if err := validateConfig(&config); err != nil {
		return err
	}

	cm.mutex.Lock()
	cm.config = &config
	cm.mutex.Unlock()

	return nil
}

func isConfigNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	// 显式指定的文件不存在时viper返回的是os层错误
	return os.IsNotExist(err)
}

// GetConfig 获取当前配置
func (cm *ConfigManager) GetConfig() *Config {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return cm.config
}

// UpdateConfig 更新配置
func (cm *ConfigManager) UpdateConfig(key string, value interface{}) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	oldConfig := *cm.config
	previous := cm.viper.Get(key)
	cm.viper.Set(key, value)

	var newConfig Config
	err := cm.viper.Unmarshal(&newConfig)
	if err == nil {
		err = validateConfig(&newConfig)
	}
	if err != nil {
		// 校验失败时恢复原值，避免后续重载带上无效值
		cm.viper.Set(key, previous)
		return err
	}

	cm.config = &newConfig

	for _, watcher := range cm.watchers {
		if err := watcher.OnConfigChange(&oldConfig, &newConfig); err != nil {
			cm.logger.Error("配置变更通知失败", zap.Error(err))
		}
	}

	return nil
}

// AddWatcher 添加配置监听器
func (cm *ConfigManager) AddWatcher(watcher ConfigWatcher) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.watchers = append(cm.watchers, watcher)
}

// EnableHotReload 启用配置热重载
func (cm *ConfigManager) EnableHotReload() {
	if !cm.GetConfig().Advanced.EnableHotReload {
		return
	}

	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		cm.logger.Debug("检测到配置文件变更", zap.String("file", e.Name))

		old := cm.GetConfig()
		if err := cm.loadConfig(); err != nil {
			cm.logger.Error("重新加载配置失败", zap.Error(err))
			return
		}

		cm.mutex.RLock()
		watchers := append([]ConfigWatcher(nil), cm.watchers...)
		newConfig := cm.config
		cm.mutex.RUnlock()
		for _, watcher := range watchers {
			if err := watcher.OnConfigChange(old, newConfig); err != nil {
				cm.logger.Error("配置变更通知失败", zap.Error(err))
			}
		}
	})

	cm.viper.WatchConfig()
}

// ResolveDBPath 返回状态数据库路径
func (c *Config) ResolveDBPath() (string, error) {
	if c.State.DBPath != "" {
		return c.State.DBPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".sizely", "state.db"), nil
}

// validateConfig 验证配置
func validateConfig(config *Config) error {
	validBackends := map[string]bool{"auto": true, "sips": true, "builtin": true}
	if !validBackends[config.Tools.Backend] {
		return &ValidationError{
			Field:   "tools.backend",
			Value:   config.Tools.Backend,
			Message: "must be one of auto, sips, builtin",
		}
	}

	if config.Tools.TimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "tools.timeout_seconds",
			Value:   config.Tools.TimeoutSeconds,
			Message: "must be greater than 0",
		}
	}

	for field, folder := range map[string]string{
		"output.assets_folder":  config.Output.AssetsFolder,
		"output.resized_folder": config.Output.ResizedFolder,
	} {
		if strings.TrimSpace(folder) == "" || strings.ContainsAny(folder, `/\`) {
			return &ValidationError{
				Field:   field,
				Value:   folder,
				Message: "must be a plain folder name",
			}
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[config.Logging.Level] {
		return &ValidationError{
			Field:   "logging.level",
			Value:   config.Logging.Level,
			Message: "must be one of debug, info, warn, error",
		}
	}

	if config.Security.MinFreeMB < 0 {
		return &ValidationError{
			Field:   "security.min_free_mb",
			Value:   config.Security.MinFreeMB,
			Message: "must not be negative",
		}
	}

	if config.State.HistoryLimit <= 0 {
		config.State.HistoryLimit = 50
	}

	// 扩展名统一为小写带点
	for i, ext := range config.Conversion.ImageExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		config.Conversion.ImageExtensions[i] = ext
	}

	return nil
}
