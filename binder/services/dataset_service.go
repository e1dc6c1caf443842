package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/deckbinder/deckbinder/binder/database/models"
	"github.com/deckbinder/deckbinder/binder/database/repositories"
	lru "github.com/hashicorp/golang-lru"
)

const catalogCacheSize = 4096

// DatasetService bulk-loads the versioned card dataset into the relational
// store: one JSON file of set metadata plus one JSON file of cards per set.
type DatasetService struct {
	cards   repositories.CardRepository
	sets    repositories.CardSetRepository
	catalog repositories.CatalogRepository

	// Catalog entries repeat heavily across sets; memoizing name→id keeps
	// the import's round-trip count proportional to distinct entries.
	catalogCache *lru.Cache
}

func NewDatasetService(
	cards repositories.CardRepository,
	sets repositories.CardSetRepository,
	catalog repositories.CatalogRepository,
) (*DatasetService, error) {
	cache, err := lru.New(catalogCacheSize)
	if err != nil {
		return nil, err
	}
	return &DatasetService{
		cards:        cards,
		sets:         sets,
		catalog:      catalog,
		catalogCache: cache,
	}, nil
}

type setPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Series    string `json:"series"`
	PtcgoCode string `json:"ptcgoCode"`
}

type abilityPayload struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type attackPayload struct {
	Name                string   `json:"name"`
	Text                string   `json:"text"`
	Damage              string   `json:"damage"`
	Cost                []string `json:"cost"`
	ConvertedEnergyCost int      `json:"convertedEnergyCost"`
}

type typeValuePayload struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type cardPayload struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Supertype            string             `json:"supertype"`
	Subtypes             []string           `json:"subtypes"`
	HP                   string             `json:"hp"`
	Types                []string           `json:"types"`
	EvolvesFrom          string             `json:"evolvesFrom"`
	EvolvesTo            []string           `json:"evolvesTo"`
	Rules                []string           `json:"rules"`
	Abilities            []abilityPayload   `json:"abilities"`
	Attacks              []attackPayload    `json:"attacks"`
	Weaknesses           []typeValuePayload `json:"weaknesses"`
	Resistances          []typeValuePayload `json:"resistances"`
	ConvertedRetreatCost *int               `json:"convertedRetreatCost"`
	Artist               string             `json:"artist"`
	FlavorText           string             `json:"flavorText"`
	Rarity               string             `json:"rarity"`
	RegulationMark       string             `json:"regulationMark"`
	Number               string             `json:"number"`
}

// ImportDir loads a dataset checkout: sets/en.json for set metadata and
// cards/en/<setID>.json per set.
func (s *DatasetService) ImportDir(ctx context.Context, dir string) error {
	start := time.Now()

	setsRaw, err := os.ReadFile(filepath.Join(dir, "sets", "en.json"))
	if err != nil {
		return fmt.Errorf("failed to read set metadata: %w", err)
	}
	var sets []setPayload
	if err := json.Unmarshal(setsRaw, &sets); err != nil {
		return fmt.Errorf("failed to parse set metadata: %w", err)
	}

	imported := 0
	for _, set := range sets {
		path := filepath.Join(dir, "cards", "en", set.ID+".json")
		cardsRaw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				slog.Warn("Set has no card file, skipping",
					slog.String("type", "sys"),
					slog.String("set", set.ID))
				continue
			}
			return fmt.Errorf("failed to read cards for set %s: %w", set.ID, err)
		}
		var cards []cardPayload
		if err := json.Unmarshal(cardsRaw, &cards); err != nil {
			return fmt.Errorf("failed to parse cards for set %s: %w", set.ID, err)
		}

		n, err := s.ImportSet(ctx, set, cards)
		if err != nil {
			return fmt.Errorf("failed to import set %s: %w", set.ID, err)
		}
		imported += n
	}

	slog.Info("Dataset import finished",
		slog.String("type", "sys"),
		slog.Int("sets", len(sets)),
		slog.Int("cards", imported),
		slog.Duration("took", time.Since(start)))
	return nil
}

// ImportSet upserts one set and its cards, then rebuilds the catalog links.
func (s *DatasetService) ImportSet(ctx context.Context, set setPayload, cards []cardPayload) (int, error) {
	setRow := &models.CardSet{
		SetID:     set.ID,
		Name:      set.Name,
		Series:    set.Series,
		PtcgoCode: set.PtcgoCode,
	}
	if err := s.sets.Upsert(ctx, setRow); err != nil {
		return 0, fmt.Errorf("failed to upsert set: %w", err)
	}

	rows := make([]*models.Card, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, s.cardRow(c, setRow.ID))
	}
	if _, err := s.cards.BulkUpsert(ctx, rows); err != nil {
		return 0, err
	}

	// The join rows need the numeric card keys; one batched lookup covers
	// the whole set.
	cardIDs := make([]string, len(cards))
	for i, c := range cards {
		cardIDs[i] = c.ID
	}
	stored, err := s.cards.GetByCardIDs(ctx, cardIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve imported card keys: %w", err)
	}
	keyByCardID := make(map[string]int64, len(stored))
	for _, card := range stored {
		keyByCardID[card.CardID] = card.ID
	}

	for _, c := range cards {
		key, ok := keyByCardID[c.ID]
		if !ok {
			continue
		}
		if err := s.linkCatalogs(ctx, key, c); err != nil {
			return 0, err
		}
	}

	return len(rows), nil
}

func (s *DatasetService) cardRow(c cardPayload, setKey int64) *models.Card {
	return &models.Card{
		CardID:               c.ID,
		Name:                 c.Name,
		Supertype:            c.Supertype,
		Subtypes:             c.Subtypes,
		HP:                   c.HP,
		Types:                c.Types,
		Weaknesses:           typeTokens(c.Weaknesses),
		Resistances:          typeTokens(c.Resistances),
		EvolvesFrom:          c.EvolvesFrom,
		EvolvesTo:            c.EvolvesTo,
		Rules:                c.Rules,
		ConvertedRetreatCost: c.ConvertedRetreatCost,
		Artist:               c.Artist,
		FlavorText:           c.FlavorText,
		Rarity:               c.Rarity,
		RegulationMark:       c.RegulationMark,
		Number:               c.Number,
		SetID:                setKey,
	}
}

func typeTokens(entries []typeValuePayload) []string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Type
	}
	return out
}

func (s *DatasetService) linkCatalogs(ctx context.Context, cardKey int64, c cardPayload) error {
	abilityIDs := make([]int64, 0, len(c.Abilities))
	for _, ab := range c.Abilities {
		id, err := s.abilityID(ctx, ab)
		if err != nil {
			return err
		}
		abilityIDs = append(abilityIDs, id)
	}
	if err := s.catalog.ReplaceCardAbilities(ctx, cardKey, abilityIDs); err != nil {
		return err
	}

	links := make([]*models.CardAttack, 0, len(c.Attacks))
	for _, at := range c.Attacks {
		id, err := s.attackID(ctx, at)
		if err != nil {
			return err
		}
		links = append(links, &models.CardAttack{
			AttackID:            id,
			Cost:                at.Cost,
			ConvertedEnergyCost: at.ConvertedEnergyCost,
		})
	}
	return s.catalog.ReplaceCardAttacks(ctx, cardKey, links)
}

func (s *DatasetService) abilityID(ctx context.Context, ab abilityPayload) (int64, error) {
	cacheKey := "ability:" + strings.ToLower(ab.Name)
	if v, ok := s.catalogCache.Get(cacheKey); ok {
		return v.(int64), nil
	}
	row, err := s.catalog.GetOrCreateAbility(ctx, ab.Name, ab.Text)
	if err != nil {
		return 0, err
	}
	s.catalogCache.Add(cacheKey, row.ID)
	return row.ID, nil
}

func (s *DatasetService) attackID(ctx context.Context, at attackPayload) (int64, error) {
	cacheKey := "attack:" + strings.ToLower(at.Name)
	if v, ok := s.catalogCache.Get(cacheKey); ok {
		return v.(int64), nil
	}
	row, err := s.catalog.GetOrCreateAttack(ctx, at.Name, at.Text, at.Damage)
	if err != nil {
		return 0, err
	}
	s.catalogCache.Add(cacheKey, row.ID)
	return row.ID, nil
}
