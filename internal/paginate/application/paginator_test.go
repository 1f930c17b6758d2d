// en internal/paginate/application/paginator_test.go
package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
	"github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/db/memory"
	"github.com/davicafu/hexapaginate/tests/mocks"
)

var customerSchema = domain.Fields("name", "age", "status")

// seedCustomers inserta Customer 1..n con status "odd"/"even".
func seedCustomers(n int) *memory.Store {
	store := memory.NewStore()
	for i := 1; i <= n; i++ {
		status := "even"
		if i%2 == 1 {
			status = "odd"
		}
		store.Insert("customers", bson.M{"_id": i, "name": fmt.Sprintf("Customer %d", i), "age": 20 + i, "status": status})
	}
	return store
}

func names(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i], _ = d["name"].(string)
	}
	return out
}

func TestPaginate_SkipLaw(t *testing.T) {
	// Arrange
	store := seedCustomers(10)
	coll := Attach("customers", store.Collection("customers"), customerSchema, domain.Defaults{})
	criteria := domain.Criteria(bson.M{"status": "odd"})
	sortByName := domain.Sort(bson.D{{Key: "name", Value: 1}})

	cases := []struct {
		page int
		want []string
	}{
		{1, []string{"Customer 1", "Customer 3"}},
		{2, []string{"Customer 5", "Customer 7"}},
		{3, []string{"Customer 9"}},
	}

	for _, tc := range cases {
		// Act
		res, err := coll.Paginate(context.Background(), criteria, domain.Options{
			Limit: domain.Limit(2),
			Page:  domain.Page(tc.page),
			Sort:  sortByName,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.Total)
		assert.Equal(t, int64(2), res.Limit)
		assert.Equal(t, tc.page, res.Page)
		assert.Equal(t, tc.want, names(res.Data))
	}
}

func TestPaginate_AbsentLimitReportsTotal(t *testing.T) {
	coll := Attach("customers", seedCustomers(10).Collection("customers"), customerSchema, domain.Defaults{})

	for _, opts := range []domain.Options{{}, {Limit: domain.Limit(0)}} {
		res, err := coll.Paginate(context.Background(), domain.CriteriaValue{}, opts)

		require.NoError(t, err)
		assert.Equal(t, int64(10), res.Total)
		assert.Equal(t, int64(10), res.Limit)
		assert.Len(t, res.Data, 10)
		assert.Equal(t, 1, res.Page)
	}
}

func TestPaginate_LimitClampedToMaxLimit(t *testing.T) {
	// Arrange
	coll := Attach("customers", seedCustomers(5).Collection("customers"), customerSchema, domain.Defaults{MaxLimit: 4})

	// Act
	res, err := coll.Paginate(context.Background(), domain.CriteriaValue{}, domain.Options{Limit: domain.Limit(10)})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Total)
	assert.Equal(t, int64(4), res.Limit)
	assert.Len(t, res.Data, 4)
}

func TestPaginate_HugePageReturnsEmptyPage(t *testing.T) {
	// Arrange
	spy := &mocks.SpyDataSource{Next: seedCustomers(2).Collection("customers")}
	coll := Attach("customers", spy, customerSchema, domain.Defaults{})

	// Act
	res, err := coll.Paginate(context.Background(), domain.CriteriaValue{}, domain.Options{
		Page:  domain.Page(1 << 62),
		Limit: domain.Limit(4),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 1<<62, res.Page)
	assert.Empty(t, res.Data)
	require.Len(t, spy.FindCalls(), 1)
	assert.Equal(t, int64(math.MaxInt64), spy.FindCalls()[0].Pagination.Offset)
}

func TestPaginate_UnlimitedFetchesEverything(t *testing.T) {
	spy := &mocks.SpyDataSource{Next: seedCustomers(30).Collection("customers")}
	coll := Attach("customers", spy, customerSchema, domain.Defaults{MaxLimit: domain.Unlimited})

	res, err := coll.Paginate(context.Background(), domain.CriteriaValue{}, domain.Options{})

	require.NoError(t, err)
	assert.Equal(t, int64(30), res.Total)
	assert.Equal(t, int64(30), res.Limit)
	assert.Len(t, res.Data, 30)
	require.Len(t, spy.FindCalls(), 1)
	assert.Equal(t, int64(0), spy.FindCalls()[0].Pagination.Limit)
	assert.Nil(t, spy.FindCalls()[0].Sort)
}

func TestPaginate_ZeroMatchSkipsFind(t *testing.T) {
	// Arrange
	spy := &mocks.SpyDataSource{Next: seedCustomers(5).Collection("customers")}
	coll := Attach("customers", spy, customerSchema, domain.Defaults{})

	// Act
	res, err := coll.Paginate(context.Background(), domain.Criteria(bson.M{"name": "nobody"}), domain.Options{Page: domain.Page(3)})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Total)
	assert.Equal(t, int64(domain.DefaultMaxLimit), res.Limit)
	assert.Equal(t, 3, res.Page)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Len(t, spy.CountCalls(), 1)
	assert.Empty(t, spy.FindCalls())
}

func TestPaginate_EncodedCriteria(t *testing.T) {
	coll := Attach("customers", seedCustomers(10).Collection("customers"), customerSchema, domain.Defaults{})
	raw := `[{"property":"age","operator":"gt","value":22},{"property":"age","operator":"lt","value":26},{"property":"ghost","value":1}]`

	res, err := coll.Paginate(context.Background(), domain.CriteriaJSON(raw), domain.Options{
		Sort: domain.SortJSON(`[{"property":"age","direction":"desc"}]`),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, []string{"Customer 5", "Customer 4", "Customer 3"}, names(res.Data))
}

func TestPaginate_NonCallableConverterTouchesNothing(t *testing.T) {
	cases := []struct {
		name string
		opts domain.Options
	}{
		{"criteria nil", domain.Options{ConvertCriteria: domain.UseCriteriaConverter(nil)}},
		{"sort nil", domain.Options{ConvertSort: domain.UseSortConverter(nil)}},
		{"wrapper nil", domain.Options{WrapCriteria: domain.UseCriteriaWrapper(nil)}},
		{"nombre desconocido", domain.Options{ConvertCriteria: domain.NamedCriteriaConverter("nope")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			spy := &mocks.SpyDataSource{Total: 3}
			stats := &mocks.StatsSpy{}
			coll := Attach("customers", spy, customerSchema, domain.Defaults{}, WithStats(stats))

			// Act
			res, err := coll.Paginate(context.Background(), domain.CriteriaValue{}, tc.opts)

			// Assert
			assert.Nil(t, res)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			var cfgErr *domain.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
			assert.Empty(t, spy.CountCalls())
			assert.Empty(t, spy.FindCalls())
			assert.Empty(t, stats.Records())
		})
	}
}

func TestPaginate_TranslationErrorBeforeStore(t *testing.T) {
	spy := &mocks.SpyDataSource{Total: 3}
	coll := Attach("customers", spy, customerSchema, domain.Defaults{})

	_, err := coll.Paginate(context.Background(), domain.CriteriaJSON(`{not json`), domain.Options{})

	assert.ErrorIs(t, err, domain.ErrTranslation)
	assert.Empty(t, spy.CountCalls())
}

func TestPaginate_StoreErrors(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("count", func(t *testing.T) {
		spy := &mocks.SpyDataSource{CountErr: boom}
		coll := Attach("customers", spy, customerSchema, domain.Defaults{})

		res, err := coll.Paginate(context.Background(), domain.CriteriaValue{}, domain.Options{})

		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrStore)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, spy.FindCalls())
	})

	t.Run("find", func(t *testing.T) {
		spy := &mocks.SpyDataSource{Total: 3, FindErr: boom}
		coll := Attach("customers", spy, customerSchema, domain.Defaults{})

		res, err := coll.Paginate(context.Background(), domain.CriteriaValue{}, domain.Options{})

		assert.Nil(t, res)
		var storeErr *domain.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "find", storeErr.Op)
		assert.ErrorIs(t, err, boom)
	})
}

func TestPaginate_ProducersAndWrapper(t *testing.T) {
	// Arrange
	spy := &mocks.SpyDataSource{Next: seedCustomers(10).Collection("customers")}
	var seenMax, seenLimit int
	defaults := domain.Defaults{
		MaxLimit: 6,
		WrapCriteria: domain.UseCriteriaWrapper(func(_ context.Context, c bson.M) (bson.M, error) {
			return bson.M{"$and": bson.A{c, bson.M{"status": "even"}}}, nil
		}),
	}
	coll := Attach("customers", spy, customerSchema, defaults)

	// Act
	res, err := coll.Paginate(context.Background(), domain.CriteriaFunc(func(context.Context) (bson.M, error) {
		return bson.M{"age": bson.M{"$gte": 24}}, nil
	}), domain.Options{
		Limit: domain.LimitFunc(func(_ context.Context, maxLimit int) (int, error) {
			seenMax = maxLimit
			return 2, nil
		}),
		Page: domain.PageFunc(func(_ context.Context, limit int) (int, error) {
			seenLimit = limit
			return 2, nil
		}),
		Sort: domain.Sort(bson.D{{Key: "age", Value: 1}}),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 6, seenMax)
	assert.Equal(t, 2, seenLimit)
	assert.Equal(t, int64(4), res.Total) // 4, 6, 8, 10
	assert.Equal(t, []string{"Customer 8", "Customer 10"}, names(res.Data))
	assert.Contains(t, spy.CountCalls()[0], "$and")
	assert.Equal(t, int64(2), spy.FindCalls()[0].Pagination.Offset)
}

func TestPaginate_ProducerErrorShortCircuits(t *testing.T) {
	spy := &mocks.SpyDataSource{Total: 1}
	coll := Attach("customers", spy, customerSchema, domain.Defaults{})
	boom := errors.New("no quota")

	_, err := coll.Paginate(context.Background(), domain.CriteriaValue{}, domain.Options{
		Select: domain.SelectFunc(func(context.Context) (bson.M, error) { return nil, boom }),
	})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, spy.CountCalls())
}

func TestPaginate_RecordsStats(t *testing.T) {
	stats := &mocks.StatsSpy{Err: errors.New("clickhouse down")}
	coll := Attach("customers", seedCustomers(3).Collection("customers"), customerSchema, domain.Defaults{},
		WithStats(stats), WithLogger(zap.NewNop()))

	res, err := coll.Paginate(context.Background(), domain.CriteriaValue{}, domain.Options{Limit: domain.Limit(2)})

	// Un recorder que falla no afecta a la respuesta.
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
	records := stats.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "customers", records[0].Collection)
	assert.Equal(t, int64(3), records[0].Total)
	assert.Equal(t, 2, records[0].Returned)
}

func TestPaginate_Concurrent(t *testing.T) {
	coll := Attach("customers", seedCustomers(20).Collection("customers"), customerSchema, domain.Defaults{MaxLimit: 5})

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			res, err := coll.Paginate(context.Background(), domain.CriteriaValue{}, domain.Options{
				Page: domain.Page(page),
				Sort: domain.Sort(bson.D{{Key: "_id", Value: 1}}),
			})
			if err != nil {
				errs <- err
				return
			}
			if page <= 4 && len(res.Data) != 5 {
				errs <- fmt.Errorf("page %d: got %d docs", page, len(res.Data))
			}
			if page > 4 && len(res.Data) != 0 {
				errs <- fmt.Errorf("page %d: expected empty page", page)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
