package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/deckbinder/deckbinder/binder/config"
	"github.com/deckbinder/deckbinder/binder/database/repositories"
	"github.com/deckbinder/deckbinder/binder/logger"
	"github.com/deckbinder/deckbinder/binder/search"
	"github.com/spf13/cobra"
)

var (
	searchFree    string
	searchName    string
	searchHP      string
	searchTypes   []string
	searchSet     string
	searchAttack  string
	searchAbility bool
	searchTrace   bool
)

var searchCMD = &cobra.Command{
	Use:   "search",
	Short: "run a structured or free-text card query",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		engine := search.New(repositories.NewSearchStore(db.BunDB()))

		start := time.Now()
		var res *search.Result
		if searchFree != "" {
			res, err = engine.FreeQuery(ctx, searchFree, nil)
			logger.LogSearch("free", resultCount(res), time.Since(start), err)
		} else {
			filters, ferr := buildFilters()
			if ferr != nil {
				return ferr
			}
			res, err = engine.Query(ctx, filters)
			logger.LogSearch("structured", resultCount(res), time.Since(start), err)
		}
		if err != nil {
			return err
		}

		ids := res.CardIDs
		if len(ids) > config.MaxSearchResults {
			ids = ids[:config.MaxSearchResults]
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		if searchTrace {
			fmt.Println("trace:", res.Trace.String())
		}
		return nil
	},
}

func resultCount(res *search.Result) int {
	if res == nil {
		return 0
	}
	return len(res.CardIDs)
}

func buildFilters() ([]search.Filter, error) {
	var filters []search.Filter

	addText := func(key, value string) {
		if value == "" {
			return
		}
		filters = append(filters, search.Filter{Config: search.Fields[key], Value: search.Text(value)})
	}

	addText("name", searchName)
	addText("setName", searchSet)
	addText("attackName", searchAttack)

	if len(searchTypes) > 0 {
		filters = append(filters, search.Filter{
			Config: search.Fields["types"],
			Value:  search.Multi(searchTypes),
		})
	}
	if searchAbility {
		filters = append(filters, search.Filter{
			Config: search.Fields["hasAbility"],
			Value:  search.Exists{},
		})
	}
	if searchHP != "" {
		value, err := parseHPFlag(searchHP)
		if err != nil {
			return nil, err
		}
		filters = append(filters, search.Filter{Config: search.Fields["hp"], Value: value})
	}
	return filters, nil
}

// parseHPFlag accepts "100", ">=100", "<=100", "100+" and "100x".
func parseHPFlag(raw string) (search.Value, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, ">="):
		return search.NumberText{Raw: strings.TrimSpace(raw[2:]), Op: search.OpGTE}, nil
	case strings.HasPrefix(raw, "<="):
		return search.NumberText{Raw: strings.TrimSpace(raw[2:]), Op: search.OpLTE}, nil
	case strings.HasSuffix(raw, "+"):
		return search.NumberText{Raw: strings.TrimSuffix(raw, "+"), Op: search.OpPlus}, nil
	case strings.HasSuffix(raw, "x"), strings.HasSuffix(raw, "×"):
		return search.NumberText{Raw: strings.TrimRight(raw, "x×"), Op: search.OpTimes}, nil
	case raw == "":
		return nil, fmt.Errorf("empty hp value")
	default:
		return search.NumberText{Raw: raw, Op: search.OpEq}, nil
	}
}

func init() {
	searchCMD.Flags().StringVar(&searchFree, "free", "", "free-text phrase searched across every field")
	searchCMD.Flags().StringVar(&searchName, "name", "", "card name filter")
	searchCMD.Flags().StringVar(&searchHP, "hp", "", "hp filter, e.g. 100, >=100, 100+")
	searchCMD.Flags().StringSliceVar(&searchTypes, "type", nil, "card type filter, repeatable")
	searchCMD.Flags().StringVar(&searchSet, "set", "", "set name filter")
	searchCMD.Flags().StringVar(&searchAttack, "attack", "", "attack name filter")
	searchCMD.Flags().BoolVar(&searchAbility, "has-ability", false, "only cards with an ability")
	searchCMD.Flags().BoolVar(&searchTrace, "trace", false, "print the query trace")
}
