package config

import "github.com/spf13/viper"

// setDefaults 设置所有默认配置值
func setDefaults(v *viper.Viper) {
	setToolsDefaults(v)
	setOutputDefaults(v)

	v.SetDefault("conversion.image_extensions", []string{
		".jpg", ".jpeg", ".png", ".heic", ".heif", ".tif", ".tiff", ".gif", ".bmp", ".webp",
	})

	v.SetDefault("state.db_path", "")
	v.SetDefault("state.history_limit", 50)

	v.SetDefault("security.check_disk_space", true)
	v.SetDefault("security.min_free_mb", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.enable_file", false)
	v.SetDefault("logging.log_dir", "")

	v.SetDefault("advanced.enable_hot_reload", false)
}

// setToolsDefaults 设置工具路径的默认值
func setToolsDefaults(v *viper.Viper) {
	// 使用命令名而非绝对路径，让程序在系统PATH中查找工具
	v.SetDefault("tools.backend", "auto")
	v.SetDefault("tools.sips_path", "sips")
	v.SetDefault("tools.timeout_seconds", 60)
}

// setOutputDefaults 设置输出目录的默认值
func setOutputDefaults(v *viper.Viper) {
	v.SetDefault("output.assets_folder", "Assets")
	v.SetDefault("output.resized_folder", "Resized")
}
