package docutil

import (
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
)

// SortDocuments ordena de forma estable según order. Las direcciones válidas
// son 1 y -1; cualquier otra es ErrUnsupportedSort.
func SortDocuments(docs []bson.M, order bson.D) error {
	if len(order) == 0 {
		return nil
	}
	dirs := make([]int, len(order))
	for i, e := range order {
		d, ok := Direction(e.Value)
		if !ok {
			return fmt.Errorf("%w: %s=%v", domain.ErrUnsupportedSort, e.Key, e.Value)
		}
		dirs[i] = d
	}

	sort.SliceStable(docs, func(i, j int) bool {
		for k, e := range order {
			a, _ := Lookup(docs[i], e.Key)
			b, _ := Lookup(docs[j], e.Key)
			if c := compareForSort(a, b); c != 0 {
				return c*dirs[k] < 0
			}
		}
		return false
	})
	return nil
}

// Direction acepta 1 y -1 en cualquier tipo numérico.
func Direction(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	switch f {
	case 1:
		return 1, true
	case -1:
		return -1, true
	default:
		return 0, false
	}
}

// compareForSort ordena primero por tipo y luego por valor.
func compareForSort(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmp3(ra < rb, ra > rb)
	}
	if c, ok := Compare(a, b); ok {
		return c
	}
	return 0
}
