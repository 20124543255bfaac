package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sizely/core/converter"
	"sizely/core/preset"
	"sizely/internal/ui"
)

// presetsCmd 管理资源集模式的预设
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage asset-mode base size presets",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return printPresets(cmd, a.presets.List())
		})
	},
}

var presetsAddCmd = &cobra.Command{
	Use:   "add <label> <size>",
	Short: "Append a preset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("size must be a positive integer (got %q)", args[1])
		}
		return withApp(func(a *app) error {
			if err := a.presets.Add(args[0], size); err != nil {
				return err
			}
			ui.Success("added %q (%d)", args[0], size)
			return nil
		})
	},
}

var presetsRemoveCmd = &cobra.Command{
	Use:   "remove [number]",
	Short: "Remove a preset (asks interactively when no number is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			index, err := presetIndexArg(args, a.presets.List())
			if err != nil {
				return err
			}
			removed, err := a.presets.Get(index)
			if err != nil {
				return err
			}
			if err := a.presets.Remove(index); err != nil {
				return err
			}
			ui.Success("removed %q", removed.Label)
			syncPresetSelection(a, func(i int) int { return preset.IndexAfterRemove(i, index) })
			return nil
		})
	},
}

var presetsMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a preset to another position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err1 := strconv.Atoi(args[0])
		to, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			return errors.New("positions must be numbers from 'sizely presets list'")
		}
		return withApp(func(a *app) error {
			if err := a.presets.Move(from-1, to-1); err != nil {
				return err
			}
			syncPresetSelection(a, func(i int) int { return preset.IndexAfterMove(i, from-1, to-1) })
			return printPresets(cmd, a.presets.List())
		})
	},
}

var presetsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the built-in presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if err := a.presets.Reset(); err != nil {
				return err
			}
			syncPresetSelection(a, func(i int) int { return i })
			return printPresets(cmd, a.presets.List())
		})
	},
}

func init() {
	presetsCmd.AddCommand(presetsListCmd, presetsAddCmd, presetsRemoveCmd, presetsMoveCmd, presetsResetCmd)
	rootCmd.AddCommand(presetsCmd)
}

// withApp 打开状态数据库执行fn后关闭
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// syncPresetSelection 预设列表变化后修正保存的选择，使下次运行仍指向同一个预设
func syncPresetSelection(a *app, adjust func(int) int) {
	prefs, err := a.state.LoadPreferences()
	if err != nil {
		log.Warn("读取偏好失败", zap.Error(err))
		return
	}
	next := selectionAfter(prefs.PresetIndex, len(a.presets.List()), adjust)
	if next == prefs.PresetIndex {
		return
	}
	prefs.PresetIndex = next
	if err := a.state.SavePreferences(prefs); err != nil {
		log.Warn("保存偏好失败", zap.Error(err))
		return
	}
	if next == converter.CustomPresetIndex {
		ui.Info("saved preset selection cleared; the custom base size is used")
		return
	}
	ui.Info("saved preset selection is now #%d", next+1)
}

// selectionAfter 计算新的预设索引。被删除或越界时回到第一个预设，列表为空时改用自定义尺寸。
func selectionAfter(current, count int, adjust func(int) int) int {
	if current == converter.CustomPresetIndex {
		return current
	}
	next := adjust(current)
	if next < 0 || next >= count {
		next = 0
	}
	if count == 0 {
		return converter.CustomPresetIndex
	}
	return next
}

func printPresets(cmd *cobra.Command, presets []preset.Preset) error {
	if len(presets) == 0 {
		ui.Info("no presets; use 'sizely presets add' or 'sizely presets reset'")
		return nil
	}
	rows := make([][]string, 0, len(presets))
	for i, p := range presets {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.Label,
			strconv.Itoa(p.Size),
			fmt.Sprintf("%d / %d / %d", p.Size, p.Size*2, p.Size*3),
		})
	}
	return ui.PrintTable(cmd.OutOrStdout(), []string{"#", "Label", "Base", "1x / 2x / 3x"}, rows)
}

// presetIndexArg 解析1起始的编号；没有参数且在终端上时用promptui选择
func presetIndexArg(args []string, presets []preset.Preset) (int, error) {
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, fmt.Errorf("preset number must be an integer (got %q)", args[0])
		}
		return n - 1, nil
	}
	if len(presets) == 0 {
		return 0, preset.ErrIndexOutOfRange
	}
	if !ui.IsStdinTerminal() {
		return 0, errors.New("a preset number is required when not running in a terminal")
	}

	items := make([]string, 0, len(presets))
	for _, p := range presets {
		items = append(items, fmt.Sprintf("%s (%d)", p.Label, p.Size))
	}
	prompt := promptui.Select{
		Label: "Preset to remove",
		Items: items,
		Size:  10,
	}
	index, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("selection cancelled: %w", err)
	}
	return index, nil
}
