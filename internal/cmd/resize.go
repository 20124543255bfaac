package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sizely/core/converter"
	"sizely/core/input"
	"sizely/core/state"
	"sizely/internal/deps"
	"sizely/internal/ui"
)

var resizeOpts struct {
	mode           string
	preset         int
	base           string
	width          string
	height         string
	format         string
	quality        int
	neverUpscale   bool
	preserveAspect bool
	keepFilename   bool
	stripMetadata  bool
	dest           string
	outDir         string
	noSave         bool
}

// resizeCmd 处理文件和目录，未指定的选项使用上次保存的设置
var resizeCmd = &cobra.Command{
	Use:   "resize [files or folders...]",
	Short: "Resize and convert images",
	Long: `缩放并转换图片。未指定的选项沿用上次的设置，指定的选项会被保存。

示例:
  sizely resize --mode assets --preset 6 icon.png
  sizely resize --mode assets --base 30 icon.png
  sizely resize --mode width --width 800 --format jpeg -q 80 photos/
  sizely resize --mode box --width 400 --height 300 --dest folder -o ~/out *.heic`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		prefs, err := a.state.LoadPreferences()
		if err != nil {
			return fmt.Errorf("failed to load preferences: %w", err)
		}
		if applyResizeFlags(cmd, &prefs) && !resizeOpts.noSave {
			if err := a.state.SavePreferences(prefs); err != nil {
				log.Warn("保存偏好失败", zap.Error(err))
			}
		}
		return runBatch(cmd, a, args, prefs)
	},
}

func init() {
	bindResizeFlags(resizeCmd)
	rootCmd.AddCommand(resizeCmd)
}

func bindResizeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&resizeOpts.mode, "mode", "m", "", "scale mode: assets, width, box")
	f.IntVarP(&resizeOpts.preset, "preset", "p", 0, "preset number from 'sizely presets list' (0 = use --base)")
	f.StringVar(&resizeOpts.base, "base", "", "custom base size for asset mode")
	f.StringVarP(&resizeOpts.width, "width", "W", "", "max width")
	f.StringVarP(&resizeOpts.height, "height", "H", "", "max height (box mode, empty = unconstrained)")
	f.StringVarP(&resizeOpts.format, "format", "f", "", "output format: "+strings.Join(converter.FormatNames(), ", "))
	f.IntVarP(&resizeOpts.quality, "quality", "q", 0, "quality 0-100 for jpeg and heic")
	f.BoolVar(&resizeOpts.neverUpscale, "never-upscale", true, "skip resizing images already within bounds")
	f.BoolVar(&resizeOpts.preserveAspect, "preserve-aspect", true, "keep the aspect ratio")
	f.BoolVar(&resizeOpts.keepFilename, "keep-filename", false, "keep the original file name (width and box modes)")
	f.BoolVar(&resizeOpts.stripMetadata, "strip-metadata", false, "remove camera, author and color profile metadata")
	f.StringVar(&resizeOpts.dest, "dest", "", "output location: sibling, inplace, folder")
	f.StringVarP(&resizeOpts.outDir, "out-dir", "o", "", "output folder (implies --dest folder)")
	f.BoolVar(&resizeOpts.noSave, "no-save", false, "do not remember the options of this run")
}

// applyResizeFlags 把显式指定的选项写入偏好，返回是否有改动
func applyResizeFlags(cmd *cobra.Command, prefs *state.Preferences) bool {
	flags := cmd.Flags()
	before := *prefs

	if flags.Changed("mode") {
		prefs.Mode = resizeOpts.mode
	}
	if flags.Changed("preset") {
		prefs.PresetIndex = resizeOpts.preset - 1
		if resizeOpts.preset <= 0 {
			prefs.PresetIndex = converter.CustomPresetIndex
		}
	}
	if flags.Changed("base") {
		prefs.CustomBase = resizeOpts.base
		if !flags.Changed("preset") {
			prefs.PresetIndex = converter.CustomPresetIndex
		}
	}
	if flags.Changed("width") {
		prefs.Width = resizeOpts.width
	}
	if flags.Changed("height") {
		prefs.Height = resizeOpts.height
	}
	if flags.Changed("format") {
		prefs.Format = resizeOpts.format
	}
	if flags.Changed("quality") {
		prefs.Quality = resizeOpts.quality
	}
	if flags.Changed("never-upscale") {
		prefs.NeverUpscale = resizeOpts.neverUpscale
	}
	if flags.Changed("preserve-aspect") {
		prefs.PreserveAspect = resizeOpts.preserveAspect
	}
	if flags.Changed("keep-filename") {
		prefs.KeepFilename = resizeOpts.keepFilename
	}
	if flags.Changed("strip-metadata") {
		prefs.StripMetadata = resizeOpts.stripMetadata
	}
	if flags.Changed("dest") {
		prefs.Destination = resizeOpts.dest
	}
	if flags.Changed("out-dir") {
		prefs.CustomDir = resizeOpts.outDir
		if !flags.Changed("dest") {
			prefs.Destination = string(converter.DestFolder)
		}
	}

	return *prefs != before
}

func rawFromPreferences(p state.Preferences) converter.RawSettings {
	return converter.RawSettings{
		Mode:           p.Mode,
		PresetIndex:    p.PresetIndex,
		CustomBase:     p.CustomBase,
		Width:          p.Width,
		Height:         p.Height,
		Format:         p.Format,
		Quality:        p.Quality,
		NeverUpscale:   p.NeverUpscale,
		PreserveAspect: p.PreserveAspect,
		KeepFilename:   p.KeepFilename,
		StripMetadata:  p.StripMetadata,
		Destination:    p.Destination,
		CustomDir:      p.CustomDir,
	}
}

// runWithSavedSettings 启动参数和链接交接使用上次保存的设置
func runWithSavedSettings(cmd *cobra.Command, files []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	prefs, err := a.state.LoadPreferences()
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}
	return runBatch(cmd, a, files, prefs)
}

// runBatch 校验设置、收集输入并在后台工作器上运行批处理
func runBatch(cmd *cobra.Command, a *app, files []string, prefs state.Preferences) error {
	settings, err := converter.ResolveSettings(rawFromPreferences(prefs), a.presets.List())
	if err != nil {
		return err
	}

	cfg := currentConfig()
	pending := input.NewSet(cfg.Conversion.ImageExtensions, log.Named("input"))
	pending.Add(files...)
	if pending.Len() == 0 {
		return errors.New("no supported image files given")
	}
	inputs := pending.Items()

	layout := converter.OutputLayout{
		AssetsFolder:  cfg.Output.AssetsFolder,
		ResizedFolder: cfg.Output.ResizedFolder,
	}
	if cfg.Security.CheckDiskSpace {
		dirs := make([]string, 0, len(inputs))
		for _, in := range inputs {
			dirs = append(dirs, layout.Dir(in, settings))
		}
		for _, low := range deps.CheckOutputSpace(dirs, cfg.Security.MinFreeMB, log) {
			ui.Warning("only %d MB free on %s", low.FreeMB, low.Dir)
		}
	}

	tool, err := converter.NewImageTool(cfg, log.Named("tool"))
	if err != nil {
		return err
	}

	worker, err := converter.NewWorker(log)
	if err != nil {
		return err
	}
	defer worker.Release()

	processor := converter.NewBatchProcessor(tool, layout, log.Named("batch"))
	job := converter.NewJob(processor, inputs, settings, log)

	signals := converter.NewSignalHandler(log, job)
	signals.Start()
	defer signals.Stop()

	log.Info("开始处理",
		zap.String("job", job.ID),
		zap.String("backend", tool.Name()),
		zap.String("mode", settings.Mode.Label()),
		zap.Int("inputs", len(inputs)))

	if err := job.Start(worker); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	progress := ui.NewProgress(out, len(inputs), renderCfg)
	for ev := range job.Events() {
		progress.Update(ev)
	}
	progress.Finish()
	result := job.Wait()

	ui.PrintSummary(out, result)

	record := state.RunRecord{
		ID:        result.JobID,
		Started:   result.Started,
		Finished:  result.Finished,
		Mode:      string(settings.Mode),
		Format:    settings.Format.Name,
		Inputs:    len(inputs),
		Produced:  len(result.Produced),
		Errors:    result.Errors,
		Cancelled: result.Cancelled,
		Log:       result.Log(),
	}
	if err := a.state.SaveRun(record); err != nil {
		log.Warn("保存运行记录失败", zap.Error(err))
	}

	if result.Errors > 0 {
		return fmt.Errorf("%d input(s) failed", result.Errors)
	}
	return nil
}
