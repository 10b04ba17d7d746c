package cli

import (
	"context"
	"errors"
	"fmt"

	"text-adventure/internal/model"
	"text-adventure/internal/service"

	"go.uber.org/zap"
)

// ExitSentinel leaves the explore sub-loop.
const ExitSentinel = "退出"

const (
	msgInvalidInput   = "输入无效，请重新输入。"
	msgNoResponse     = "请求失败，叙述者暂时没有回应。请确认模型服务已启动且 API 地址正确。"
	msgCorruptSave    = "存档缺少必要字段，已创建新游戏"
	msgSaveFailed     = "保存游戏失败：%v"
	msgGoodbye        = "游戏已保存，感谢游玩！"
	msgLevelUp        = "恭喜你，升级到了 %d 级！"
	msgEmptyName      = "名字不能为空，请重新输入。"
	msgEmptyAction    = "行动不能为空，请重新输入。"
	promptSaveChoice  = "请选择要加载的存档编号（输入 0 开始新游戏）："
	promptName        = "请输入你的名字: "
	promptClass       = "请输入职业编号: "
	promptCommand     = "请输入指令编号: "
	promptAction      = "请输入你的行动（输入 '" + ExitSentinel + "' 回到指令菜单）: "
	promptQuestChoice = "请选择要处理的任务编号（输入 0 跳过）："
	promptItemChoice  = "请选择要使用的物品编号（输入 0 取消）："
)

var mainMenu = []string{
	"1. 查看玩家信息：查看你的角色详细信息，包括等级、属性、物品栏等。",
	"2. 处理任务：查看并处理你当前接到的任务。",
	"3. 继续探索：在当前区域进行探索，可能会遇到新的任务或事件。",
	"4. 使用物品：使用你物品栏中的物品来提升属性。",
	"5. 保存并退出游戏：保存当前游戏进度并退出游戏。",
}

const (
	cmdPlayerInfo = iota + 1
	cmdQuests
	cmdExplore
	cmdUseItem
	cmdSaveAndExit
)

// Engine is the game surface the console drives. *service.GameService implements it.
type Engine interface {
	ListSaves(ctx context.Context) ([]string, error)
	LoadGame(ctx context.Context, playerName string) (*model.PlayerState, error)
	SaveGame(ctx context.Context, state *model.PlayerState) error
	NewGame(ctx context.Context, playerName string, pick service.ClassPicker) (*model.PlayerState, error)
	DescribeScene(ctx context.Context, state *model.PlayerState) (string, error)
	TakeAction(ctx context.Context, state *model.PlayerState, previousNarrative, action string) (service.TurnResult, error)
	ResolveQuest(ctx context.Context, state *model.PlayerState, index int) (service.TurnResult, error)
	UseItem(ctx context.Context, state *model.PlayerState, index int) (service.TurnResult, error)
}

var _ Engine = (*service.GameService)(nil)

// Game is the interactive session: save selection, then the command menu until the player quits.
type Game struct {
	engine  Engine
	console *Console
	logger  *zap.Logger
}

func NewGame(engine Engine, console *Console, logger *zap.Logger) *Game {
	return &Game{engine: engine, console: console, logger: logger.Named("CLI")}
}

// Run plays one session. Closed input ends the session after saving, without error.
func (g *Game) Run(ctx context.Context) error {
	state, err := g.start(ctx)
	if err != nil {
		if errors.Is(err, ErrInputClosed) {
			return nil
		}
		return err
	}

	g.console.success("欢迎回来，%s！你现在位于 %s。", state.PlayerName, state.Location)
	err = g.loop(ctx, state)
	if errors.Is(err, ErrInputClosed) {
		g.logger.Info("Input closed, saving and leaving", zap.String("player", state.PlayerName))
		return g.engine.SaveGame(ctx, state)
	}
	return err
}

func (g *Game) start(ctx context.Context) (*model.PlayerState, error) {
	names, err := g.engine.ListSaves(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	if len(names) == 0 {
		return g.newGame(ctx)
	}

	g.console.info("找到以下存档：")
	for i, name := range names {
		g.console.info("%d. %s", i+1, name)
	}
	for {
		choice, err := g.console.askNumber(promptSaveChoice, 0, len(names))
		if err != nil {
			return nil, err
		}
		if choice == 0 {
			return g.newGame(ctx)
		}
		state, err := g.engine.LoadGame(ctx, names[choice-1])
		switch {
		case err == nil:
			return state, nil
		case errors.Is(err, model.ErrCorruptRecord):
			g.console.failure(msgCorruptSave)
			return g.newGame(ctx)
		case errors.Is(err, model.ErrNotFound):
			g.console.failure("存档 %s 不存在，请重新选择。", names[choice-1])
		default:
			return nil, err
		}
	}
}

func (g *Game) newGame(ctx context.Context) (*model.PlayerState, error) {
	var name string
	for name == "" {
		answer, err := g.console.ask(promptName)
		if err != nil {
			return nil, err
		}
		if name = answer; name == "" {
			g.console.failure(msgEmptyName)
		}
	}
	return g.engine.NewGame(ctx, name, g.pickClass)
}

func (g *Game) pickClass(catalog model.ClassCatalog) (string, error) {
	names := catalog.Names()
	g.console.info("\n可选职业：")
	for i, name := range names {
		stats, _ := catalog.Stats(name)
		g.console.println(toneNarrative, "%d. %s (攻:%d 防:%d 魔:%d)", i+1, name, stats.Attack, stats.Defense, stats.Magic)
	}
	choice, err := g.console.askNumber(promptClass, 1, len(names))
	if err != nil {
		return "", err
	}
	return names[choice-1], nil
}

func (g *Game) loop(ctx context.Context, state *model.PlayerState) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.console.info("\n可用指令:")
		for _, line := range mainMenu {
			g.console.info("%s", line)
		}
		choice, err := g.console.askNumber(promptCommand, cmdPlayerInfo, cmdSaveAndExit)
		if err != nil {
			return err
		}

		switch choice {
		case cmdPlayerInfo:
			g.console.RenderPlayerInfo(state)
		case cmdQuests:
			err = g.handleQuests(ctx, state)
		case cmdExplore:
			err = g.explore(ctx, state)
		case cmdUseItem:
			err = g.useItem(ctx, state)
		case cmdSaveAndExit:
			if err := g.engine.SaveGame(ctx, state); err != nil {
				g.console.failure(msgSaveFailed, err)
				continue
			}
			g.console.success(msgGoodbye)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (g *Game) handleQuests(ctx context.Context, state *model.PlayerState) error {
	if len(state.Quests) == 0 {
		g.console.info("你目前没有任何任务。")
		return nil
	}
	g.console.info("你当前有以下任务：")
	for i, quest := range state.Quests {
		g.console.info("%d. %s", i+1, quest)
	}
	choice, err := g.console.askNumber(promptQuestChoice, 0, len(state.Quests))
	if err != nil || choice == 0 {
		return err
	}
	res, err := g.engine.ResolveQuest(ctx, state, choice)
	return g.report(ctx, res, err)
}

func (g *Game) explore(ctx context.Context, state *model.PlayerState) error {
	scene, err := g.engine.DescribeScene(ctx, state)
	if err != nil {
		return g.report(ctx, service.TurnResult{}, err)
	}
	g.console.narrate(scene)

	previous := scene
	for {
		action, err := g.console.ask(promptAction)
		if err != nil {
			return err
		}
		if action == ExitSentinel {
			if err := g.engine.SaveGame(ctx, state); err != nil {
				g.console.failure(msgSaveFailed, err)
			}
			return nil
		}
		if action == "" {
			g.console.failure(msgEmptyAction)
			continue
		}

		res, err := g.engine.TakeAction(ctx, state, previous, action)
		if err := g.report(ctx, res, err); err != nil {
			return err
		}
		if res.Narrative != "" {
			previous = res.Narrative
		}
	}
}

func (g *Game) useItem(ctx context.Context, state *model.PlayerState) error {
	if len(state.Inventory) == 0 {
		g.console.info("你没有任何物品可以使用。")
		return nil
	}
	g.console.info("你拥有以下物品：")
	for i, item := range state.Inventory {
		g.console.info("%d. %s", i+1, item)
	}
	choice, err := g.console.askNumber(promptItemChoice, 0, len(state.Inventory))
	if err != nil || choice == 0 {
		return err
	}
	res, err := g.engine.UseItem(ctx, state, choice)
	if rerr := g.report(ctx, res, err); rerr != nil {
		return rerr
	}
	if !res.StatIncrease.IsZero() {
		g.console.success("属性提升：%s", res.StatIncrease)
	}
	return nil
}

// report shows a turn outcome. Turn failures are displayed and swallowed;
// only context cancellation is passed back to end the session.
func (g *Game) report(ctx context.Context, res service.TurnResult, err error) error {
	if res.Narrative != "" {
		g.console.narrate(res.Narrative)
	}
	first := res.Applied.NewLevel - res.Applied.LevelsGained + 1
	for level := first; level <= res.Applied.NewLevel && res.Applied.LevelsGained > 0; level++ {
		g.console.success(msgLevelUp, level)
	}
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	log := g.logger.With(zap.String("turnID", res.TurnID))
	switch {
	case errors.Is(err, model.ErrNoResponse):
		log.Warn("Turn had no narrative", zap.Error(err))
		g.console.failure(msgNoResponse)
	case errors.Is(err, model.ErrIndexOutOfRange), errors.Is(err, model.ErrInvalidInput):
		g.console.failure(msgInvalidInput)
	default:
		log.Error("Turn could not be saved", zap.Error(err))
		g.console.failure(msgSaveFailed, err)
	}
	return nil
}
