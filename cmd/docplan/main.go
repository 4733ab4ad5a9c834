// Command docplan explains how the query planner would scan a given
// index for a given query: it parses a query document, lowers it to a
// FieldRangeSet, projects that onto an index key pattern, and prints the
// resulting bound list the way a storage engine would consume it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ogkla/mongo/internal/config"
	"github.com/ogkla/mongo/internal/logging"
	"github.com/ogkla/mongo/internal/planner"
	"github.com/ogkla/mongo/internal/query"
)

func main() {
	queryJSON := flag.String("query", `{}`, "query document as JSON")
	indexSpec := flag.String("index", "", "comma-separated field:dir pairs, e.g. a:1,b:-1")
	dir := flag.Int("dir", 1, "scan direction, +1 or -1")
	skip := flag.Int("skip", 0, "number of matches to skip")
	limit := flag.Int("limit", 0, "maximum matches to return, 0 for unbounded")
	dev := flag.Bool("dev", false, "use a human-readable logger instead of structured JSON")
	flag.Parse()

	if *dev {
		if err := logging.SetDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "docplan: failed to configure logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer logging.Sync()

	cfg, err := config.Load("DOCPLAN")
	if err != nil {
		fmt.Fprintf(os.Stderr, "docplan: %v\n", err)
		os.Exit(1)
	}
	config.Apply(cfg)

	pattern, err := parseIndexSpec(*indexSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docplan: %v\n", err)
		os.Exit(1)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(*queryJSON), &doc); err != nil {
		fmt.Fprintf(os.Stderr, "docplan: invalid query JSON: %v\n", err)
		os.Exit(1)
	}

	if err := explain(doc, pattern, *dir, *skip, *limit); err != nil {
		logging.L().Error("explain failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "docplan: %v\n", err)
		os.Exit(1)
	}
}

func explain(doc map[string]interface{}, pattern planner.KeyPattern, dir, skip, limit int) error {
	root, err := query.Parse(doc)
	if err != nil {
		return fmt.Errorf("parsing query: %w", err)
	}

	orSet, err := planner.NewOrSet(root)
	if err != nil {
		return fmt.Errorf("lowering predicates: %w", err)
	}

	fmt.Printf("hadOr: %v\n", orSet.HadOr())

	clause := 0
	for {
		frs := orSet.TopFrs()
		if !frs.MatchPossible() {
			fmt.Printf("clause %d: no match possible\n", clause)
		} else {
			vec, err := planner.NewFieldRangeVector(frs, pattern, dir)
			if err != nil {
				return fmt.Errorf("clause %d: %w", clause, err)
			}
			fmt.Printf("clause %d: size=%d\n", clause, vec.Size())
			for _, kr := range vec.BoundList() {
				fmt.Printf("  start=%v end=%v\n", kr.Start, kr.End)
			}
		}

		if !orSet.MoreOrClauses() {
			break
		}
		var indexFields []string
		if pattern != nil {
			indexFields = pattern.Fields()
		}
		orSet.PopOrClause(indexFields)
		clause++
	}

	fmt.Printf("applySkipLimit(10, %d, %d) = %d\n", skip, limit, planner.ApplySkipLimit(10, skip, limit))
	return nil
}

func parseIndexSpec(spec string) (planner.KeyPattern, error) {
	if spec == "" {
		return nil, nil
	}
	var pattern planner.KeyPattern
	for _, part := range strings.Split(spec, ",") {
		field, dirStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid index component %q, want field:dir", part)
		}
		d, err := strconv.Atoi(dirStr)
		if err != nil || (d != 1 && d != -1) {
			return nil, fmt.Errorf("invalid direction in %q, want 1 or -1", part)
		}
		pattern = append(pattern, planner.KeyPatternField{Field: field, Dir: d})
	}
	return pattern, nil
}
