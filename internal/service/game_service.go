package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"text-adventure/internal/model"
	"text-adventure/internal/repository"
	"text-adventure/internal/schemas"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Operation labels used in logs and metrics.
const (
	opScene   = "scene"
	opAction  = "action"
	opQuest   = "quest"
	opItem    = "item"
	opClasses = "classes"
)

// TurnResult is what one narrated turn produced.
type TurnResult struct {
	TurnID    string
	Narrative string
	Delta     model.Delta
	Applied   ApplyResult
	// Item is the consumed item for item turns.
	Item string
	// Quest is the resolved quest for quest turns.
	Quest string
	// StatIncrease is the boost that took effect for item turns.
	StatIncrease model.StatTriple
}

// ClassPicker chooses one class name from the catalog offered to a new player.
type ClassPicker func(catalog model.ClassCatalog) (string, error)

// GameOptions tune new-game behaviour.
type GameOptions struct {
	// GenerateClasses asks the narrator for extra classes before class selection.
	GenerateClasses bool
	// ClassAttempts bounds the class-generation requests per new game.
	ClassAttempts int
}

// GameService runs one turn at a time: generate, extract, apply, save.
type GameService struct {
	narrator Narrator
	updater  *StateUpdater
	repo     repository.PlayerStateRepository
	opts     GameOptions
	logger   *zap.Logger
}

func NewGameService(narrator Narrator, updater *StateUpdater, repo repository.PlayerStateRepository, opts GameOptions, logger *zap.Logger) *GameService {
	if opts.ClassAttempts < 1 {
		opts.ClassAttempts = 1
	}
	return &GameService{
		narrator: narrator,
		updater:  updater,
		repo:     repo,
		opts:     opts,
		logger:   logger.Named("GameService"),
	}
}

// ListSaves returns the names of saved players.
func (s *GameService) ListSaves(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}

// LoadGame returns the saved state of a player. Missing and corrupt records wrap model.ErrNotFound.
func (s *GameService) LoadGame(ctx context.Context, playerName string) (*model.PlayerState, error) {
	state, err := s.repo.Load(ctx, playerName)
	if err != nil {
		if errors.Is(err, model.ErrCorruptRecord) {
			s.logger.Warn("Save is corrupt, a new game is required", zap.String("player", playerName), zap.Error(err))
		}
		return nil, err
	}
	s.logger.Info("Game loaded", zap.String("player", playerName), zap.Int("level", state.Level))
	return state, nil
}

// SaveGame persists the state.
func (s *GameService) SaveGame(ctx context.Context, state *model.PlayerState) error {
	if err := s.repo.Save(ctx, state); err != nil {
		s.logger.Error("Failed to save game", zap.String("player", state.PlayerName), zap.Error(err))
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

// NewGame builds the class catalog, lets pick choose a class and saves the new character.
func (s *GameService) NewGame(ctx context.Context, playerName string, pick ClassPicker) (*model.PlayerState, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, fmt.Errorf("%w: player name is empty", model.ErrInvalidInput)
	}

	catalog := model.DefaultClassCatalog()
	if s.opts.GenerateClasses {
		s.EnrichClasses(ctx, &catalog)
	}

	class, err := pick(catalog)
	if err != nil {
		return nil, err
	}
	state, err := model.NewPlayerState(playerName, class, catalog)
	if err != nil {
		return nil, err
	}
	if err := s.SaveGame(ctx, state); err != nil {
		return nil, err
	}
	s.logger.Info("New game created",
		zap.String("player", state.PlayerName),
		zap.String("class", state.PlayerClass),
		zap.Int("classesOffered", catalog.Len()),
	)
	return state, nil
}

// EnrichClasses merges narrator-invented classes into catalog and returns how many were added.
// Replies without a usable class are retried; an unreachable narrator ends the enrichment.
func (s *GameService) EnrichClasses(ctx context.Context, catalog *model.ClassCatalog) int {
	log := s.logger.With(zap.String("operation", opClasses))
	for attempt := 1; attempt <= s.opts.ClassAttempts; attempt++ {
		text, err := s.narrator.Generate(ctx, classGenerationPrompt)
		if err != nil {
			log.Warn("Class generation failed, using default classes", zap.Error(err))
			recordTurn(opClasses, outcomeNoResponse)
			return 0
		}
		added := catalog.Merge(schemas.ParseClassList(text))
		if added > 0 {
			log.Info("Generated classes merged", zap.Int("added", added), zap.Int("attempt", attempt))
			recordTurn(opClasses, outcomeSuccess)
			return added
		}
		log.Warn("Class generation reply had no new classes", zap.Int("attempt", attempt))
	}
	recordTurn(opClasses, outcomeBadInput)
	return 0
}

// DescribeScene narrates the current location. The state is not changed.
func (s *GameService) DescribeScene(ctx context.Context, state *model.PlayerState) (string, error) {
	turnID := uuid.New().String()
	text, err := s.narrator.Generate(ctx, scenePrompt(state))
	if err != nil {
		s.logger.Warn("Scene generation failed", zap.String("turnID", turnID), zap.Error(err))
		recordTurn(opScene, outcomeNoResponse)
		return "", err
	}
	recordTurn(opScene, outcomeSuccess)
	return text, nil
}

// TakeAction narrates the outcome of a free-text action and applies the facts found in the reply.
// A failed generation leaves the state untouched.
func (s *GameService) TakeAction(ctx context.Context, state *model.PlayerState, previousNarrative, action string) (TurnResult, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		recordTurn(opAction, outcomeBadInput)
		return TurnResult{}, fmt.Errorf("%w: action is empty", model.ErrInvalidInput)
	}
	res := TurnResult{TurnID: uuid.New().String()}
	log := s.logger.With(zap.String("turnID", res.TurnID), zap.String("operation", opAction), zap.String("player", state.PlayerName))

	text, err := s.narrator.Generate(ctx, actionPrompt(previousNarrative, action))
	if err != nil {
		log.Warn("Action generation failed, no state change", zap.Error(err))
		recordTurn(opAction, outcomeNoResponse)
		return res, err
	}
	res.Narrative = text
	res.Delta = s.extract(text)
	res.Applied = s.updater.Apply(state, res.Delta)
	levelUpsTotal.Add(float64(res.Applied.LevelsGained))

	return res, s.commit(ctx, log, opAction, state)
}

// ResolveQuest narrates the quest at the 1-based index. On success its rewards are applied and
// it moves to the completed list; on failure it stays open.
func (s *GameService) ResolveQuest(ctx context.Context, state *model.PlayerState, index int) (TurnResult, error) {
	resolution, err := s.updater.BeginQuest(state, index)
	if err != nil {
		recordTurn(opQuest, outcomeBadInput)
		return TurnResult{}, err
	}
	res := TurnResult{TurnID: uuid.New().String(), Quest: resolution.Quest}
	log := s.logger.With(zap.String("turnID", res.TurnID), zap.String("operation", opQuest), zap.String("player", state.PlayerName))

	text, err := s.narrator.Generate(ctx, questPrompt(state, resolution.Quest))
	if err != nil {
		s.updater.AbortQuest(state, resolution)
		log.Warn("Quest generation failed, quest kept open", zap.String("quest", resolution.Quest), zap.Error(err))
		recordTurn(opQuest, outcomeNoResponse)
		return res, err
	}
	res.Narrative = text
	res.Delta = s.extract(text)
	res.Applied = s.updater.CompleteQuest(state, resolution, res.Delta)
	levelUpsTotal.Add(float64(res.Applied.LevelsGained))

	return res, s.commit(ctx, log, opQuest, state)
}

// UseItem consumes the item at the 1-based index and saves before narrating its effect,
// so the item is gone even when generation fails.
func (s *GameService) UseItem(ctx context.Context, state *model.PlayerState, index int) (TurnResult, error) {
	item, err := s.updater.ConsumeItem(state, index)
	if err != nil {
		recordTurn(opItem, outcomeBadInput)
		return TurnResult{}, err
	}
	res := TurnResult{TurnID: uuid.New().String(), Item: item}
	log := s.logger.With(zap.String("turnID", res.TurnID), zap.String("operation", opItem), zap.String("player", state.PlayerName))

	if err := s.SaveGame(ctx, state); err != nil {
		recordTurn(opItem, outcomeSaveError)
		return res, err
	}

	text, err := s.narrator.Generate(ctx, itemPrompt(state, item))
	if err != nil {
		log.Warn("Item effect generation failed, item already consumed", zap.String("item", item), zap.Error(err))
		recordTurn(opItem, outcomeNoResponse)
		return res, err
	}
	res.Narrative = text
	res.Delta = s.extract(text)
	res.StatIncrease = s.updater.ApplyItemEffect(state, res.Delta)

	return res, s.commit(ctx, log, opItem, state)
}

func (s *GameService) extract(text string) model.Delta {
	delta, names := schemas.ExtractFactsWithNames(text)
	recordFacts(names)
	return delta
}

func (s *GameService) commit(ctx context.Context, log *zap.Logger, op string, state *model.PlayerState) error {
	if err := s.SaveGame(ctx, state); err != nil {
		recordTurn(op, outcomeSaveError)
		return err
	}
	recordTurn(op, outcomeSuccess)
	log.Info("Turn committed",
		zap.Int("level", state.Level),
		zap.Int("experience", state.Experience),
		zap.Int("gold", state.Gold),
		zap.String("location", state.Location),
	)
	return nil
}
