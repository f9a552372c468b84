package dyndb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/raywall/dynamodb-quick-service/envloader"
	"github.com/raywall/dynamodb-quick-service/expression"
	"github.com/raywall/dynamodb-quick-service/pkg/metrics"
	"github.com/raywall/dynamodb-quick-service/request"
	"github.com/raywall/dynamodb-quick-service/validate"
	"github.com/rs/zerolog"
)

const (
	opGet       = "get"
	opCreate    = "create"
	opUpdate    = "update"
	opDelete    = "delete"
	opQuery     = "query"
	opScan      = "scan"
	opBatchPut  = "batch_put"
	opBatchGet  = "batch_get"
	maxAttempts = 5

	// CreatedAt e UpdatedAt são gravados nos itens em milissegundos desde a época.
	CreatedAt = "createdAt"
	UpdatedAt = "updatedAt"
)

// ItemCache é um cache read-through de itens individuais.
type ItemCache interface {
	Get(ctx context.Context, key string) (Item, bool, error)
	Set(ctx context.Context, key string, item Item, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Store executa requisições simplificadas sobre uma tabela do DynamoDB.
type Store struct {
	client   Client
	cfg      TableConfig
	reqOpts  []request.Option
	cache    ItemCache
	cacheTTL time.Duration
	metrics  metrics.Provider
	now      func() time.Time
	backoff  time.Duration
}

// Option configura um Store.
type Option func(*Store)

// WithCache habilita o cache read-through no Get.
func WithCache(cache ItemCache, ttl time.Duration) Option {
	return func(s *Store) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithMetrics(p metrics.Provider) Option {
	return func(s *Store) {
		if p != nil {
			s.metrics = p
		}
	}
}

// WithClock substitui time.Now na geração de timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRequestOptions repassa options a toda requisição montada.
func WithRequestOptions(opts ...request.Option) Option {
	return func(s *Store) { s.reqOpts = append(s.reqOpts, opts...) }
}

// WithBackoff define o atraso base entre as novas tentativas de itens não processados.
func WithBackoff(d time.Duration) Option {
	return func(s *Store) { s.backoff = d }
}

// New cria um store reutilizável. Campos vazios de cfg são lidos do ambiente.
func New(client Client, cfg TableConfig, opts ...Option) *Store {
	if cfg.TableName == "" || cfg.HashKey == "" {
		_ = envloader.Load(&cfg)
	}

	s := &Store{
		client:  client,
		cfg:     cfg,
		metrics: metrics.Noop{},
		now:     time.Now,
		backoff: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config retorna a configuração de tabela em uso.
func (s *Store) Config() TableConfig {
	return s.cfg
}

// Get busca um item pela chave.
func (s *Store) Get(ctx context.Context, r Request) (Item, error) {
	table := s.table(r)
	log, done := s.begin(ctx, opGet, table)

	item, err := s.get(ctx, table, r)
	done(err)
	if err != nil {
		return nil, err
	}
	log.Debug().Msg("item fetched")
	return item, nil
}

func (s *Store) get(ctx context.Context, table string, r Request) (Item, error) {
	if err := validate.Struct(ctx, r); err != nil {
		return nil, storeErr(opGet, table, ErrInvalidInput, err)
	}
	keyParams, err := s.keyOf(r)
	if err != nil {
		return nil, storeErr(opGet, table, ErrInvalidInput, err)
	}

	cacheKey := s.cacheKey(table, keyParams)
	if s.cache != nil {
		if item, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("cache_key", cacheKey).Msg("cache read failed")
		} else if ok {
			return item, nil
		}
	}

	key, err := expression.EncodeMap(keyParams)
	if err != nil {
		return nil, storeErr(opGet, table, ErrInvalidInput, err)
	}
	in, err := request.Get(table, key)
	if err != nil {
		return nil, storeErr(opGet, table, ErrInvalidInput, err)
	}

	out, err := s.client.GetItem(ctx, in)
	if err != nil {
		return nil, classify(opGet, table, err)
	}
	if len(out.Item) == 0 {
		return nil, storeErr(opGet, table, ErrNotFound, nil)
	}

	item, err := decode(out.Item)
	if err != nil {
		return nil, storeErr(opGet, table, ErrInvalidInput, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, item, s.cacheTTL); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("cache_key", cacheKey).Msg("cache write failed")
		}
	}
	return item, nil
}

// Create grava um item novo. Falha com ErrAlreadyExists quando já existe item
// com a mesma chave, tanto na consulta prévia quanto, com escritores
// concorrentes, pelo put condicional.
func (s *Store) Create(ctx context.Context, r Request) (Item, error) {
	table := s.table(r)
	log, done := s.begin(ctx, opCreate, table)

	item, err := s.create(ctx, table, r)
	done(err)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("item created")
	return item, nil
}

func (s *Store) create(ctx context.Context, table string, r Request) (Item, error) {
	if r.Item.Len() == 0 {
		return nil, storeErr(opCreate, table, ErrInvalidInput, errors.New("item is required"))
	}
	keyParams, err := s.keyOf(r)
	if err != nil {
		return nil, storeErr(opCreate, table, ErrInvalidInput, err)
	}

	_, err = s.get(ctx, table, Request{Table: table, Key: keyParams})
	switch {
	case err == nil:
		return nil, storeErr(opCreate, table, ErrAlreadyExists, nil)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	now := s.timestamp()
	item := r.Item.Clone()
	keyParams.Each(func(name string, v any) bool {
		if !item.Has(name) {
			item.Set(name, v)
		}
		return true
	})
	if !item.Has(CreatedAt) {
		item.Set(CreatedAt, now)
	}
	item.Set(UpdatedAt, now)

	in, err := request.ConditionalPut(table, item, s.cfg.HashKey)
	if err != nil {
		return nil, storeErr(opCreate, table, ErrInvalidInput, err)
	}
	if _, err := s.client.PutItem(ctx, in); err != nil {
		return nil, classify(opCreate, table, err)
	}

	out, err := decode(in.Item)
	if err != nil {
		return nil, storeErr(opCreate, table, ErrInvalidInput, err)
	}
	s.invalidate(ctx, table, keyParams)
	return out, nil
}

// Update altera os atributos informados de um item existente e retorna o
// item como ficou gravado. updatedAt é sempre renovado.
func (s *Store) Update(ctx context.Context, r Request) (Item, error) {
	table := s.table(r)
	log, done := s.begin(ctx, opUpdate, table)

	item, err := s.update(ctx, table, r)
	done(err)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("item updated")
	return item, nil
}

func (s *Store) update(ctx context.Context, table string, r Request) (Item, error) {
	if r.Item.Len() == 0 {
		return nil, storeErr(opUpdate, table, ErrInvalidInput, errors.New("attributes are required"))
	}
	keyParams, err := s.keyOf(r)
	if err != nil {
		return nil, storeErr(opUpdate, table, ErrInvalidInput, err)
	}

	if _, err := s.get(ctx, table, Request{Table: table, Key: keyParams}); err != nil {
		var se *StoreError
		if errors.As(err, &se) {
			se.Op = opUpdate
		}
		return nil, err
	}

	key, err := expression.EncodeMap(keyParams)
	if err != nil {
		return nil, storeErr(opUpdate, table, ErrInvalidInput, err)
	}
	attrs := r.Item.With(UpdatedAt, s.timestamp())
	in, err := request.Update(table, key, attrs, s.reqOpts...)
	if err != nil {
		return nil, storeErr(opUpdate, table, ErrInvalidInput, err)
	}

	out, err := s.client.UpdateItem(ctx, in)
	if err != nil {
		return nil, classify(opUpdate, table, err)
	}
	s.invalidate(ctx, table, keyParams)

	item, err := decode(out.Attributes)
	if err != nil {
		return nil, storeErr(opUpdate, table, ErrInvalidInput, err)
	}
	return item, nil
}

// Delete remove um item pela chave. Remover item inexistente não é erro.
func (s *Store) Delete(ctx context.Context, r Request) error {
	table := s.table(r)
	log, done := s.begin(ctx, opDelete, table)

	err := s.delete(ctx, table, r)
	done(err)
	if err != nil {
		return err
	}
	log.Info().Msg("item deleted")
	return nil
}

func (s *Store) delete(ctx context.Context, table string, r Request) error {
	keyParams, err := s.keyOf(r)
	if err != nil {
		return storeErr(opDelete, table, ErrInvalidInput, err)
	}
	key, err := expression.EncodeMap(keyParams)
	if err != nil {
		return storeErr(opDelete, table, ErrInvalidInput, err)
	}
	in, err := request.Delete(table, key)
	if err != nil {
		return storeErr(opDelete, table, ErrInvalidInput, err)
	}
	if _, err := s.client.DeleteItem(ctx, in); err != nil {
		return classify(opDelete, table, err)
	}
	s.invalidate(ctx, table, keyParams)
	return nil
}

// Query executa uma consulta por igualdade de chave na tabela ou em r.Index.
func (s *Store) Query(ctx context.Context, r Request) (Page, error) {
	table := s.table(r)
	_, done := s.begin(ctx, opQuery, table)

	page, err := s.query(ctx, table, r)
	done(err)
	return page, err
}

func (s *Store) query(ctx context.Context, table string, r Request) (Page, error) {
	if err := validate.Struct(ctx, r); err != nil {
		return Page{}, storeErr(opQuery, table, ErrInvalidInput, err)
	}
	start, err := decodeToken(r.Token)
	if err != nil {
		return Page{}, storeErr(opQuery, table, ErrInvalidToken, err)
	}

	idx, _ := s.cfg.index(r.Index)
	in, err := request.Query(table, request.QueryParams{
		Index:                r.Index,
		Conditions:           r.Conditions,
		Filters:              r.Filters,
		Projection:           r.Projection,
		Limit:                r.Limit,
		StartKey:             start,
		EventuallyConsistent: idx.Global,
	}, s.requestOptions(r)...)
	if err != nil {
		return Page{}, storeErr(opQuery, table, ErrInvalidInput, err)
	}

	out, err := s.client.Query(ctx, in)
	if err != nil {
		return Page{}, classify(opQuery, table, err)
	}
	return s.page(opQuery, table, out.Items, out.LastEvaluatedKey)
}

// Scan lê a tabela aplicando r.Filters e r.Projection.
func (s *Store) Scan(ctx context.Context, r Request) (Page, error) {
	table := s.table(r)
	_, done := s.begin(ctx, opScan, table)

	page, err := s.scan(ctx, table, r)
	done(err)
	return page, err
}

func (s *Store) scan(ctx context.Context, table string, r Request) (Page, error) {
	if err := validate.Struct(ctx, r); err != nil {
		return Page{}, storeErr(opScan, table, ErrInvalidInput, err)
	}
	start, err := decodeToken(r.Token)
	if err != nil {
		return Page{}, storeErr(opScan, table, ErrInvalidToken, err)
	}

	in, err := request.Scan(table, request.ScanParams{
		Filters:    r.Filters,
		Projection: r.Projection,
		Limit:      r.Limit,
		StartKey:   start,
		Index:      r.Index,
	}, s.requestOptions(r)...)
	if err != nil {
		return Page{}, storeErr(opScan, table, ErrInvalidInput, err)
	}

	out, err := s.client.Scan(ctx, in)
	if err != nil {
		return Page{}, classify(opScan, table, err)
	}
	return s.page(opScan, table, out.Items, out.LastEvaluatedKey)
}

// BatchPut grava items em lotes de 25, repetindo as escritas não processadas
// com backoff exponencial. Os itens são gravados sem condição.
func (s *Store) BatchPut(ctx context.Context, items []*expression.Params) error {
	table := s.cfg.TableName
	_, done := s.begin(ctx, opBatchPut, table)

	err := s.batchPut(ctx, table, items)
	done(err)
	return err
}

func (s *Store) batchPut(ctx context.Context, table string, items []*expression.Params) error {
	now := s.timestamp()
	puts := make([]map[string]types.AttributeValue, 0, len(items))
	for i, item := range items {
		stamped := item.Clone()
		if !stamped.Has(CreatedAt) {
			stamped.Set(CreatedAt, now)
		}
		stamped.Set(UpdatedAt, now)

		av, err := expression.EncodeMap(stamped)
		if err != nil {
			return storeErr(opBatchPut, table, ErrInvalidInput, fmt.Errorf("item %d: %w", i, err))
		}
		puts = append(puts, av)
	}

	inputs, err := request.BatchWrite(table, puts, nil)
	if err != nil {
		return storeErr(opBatchPut, table, ErrInvalidInput, err)
	}

	for _, in := range inputs {
		pending := in.RequestItems
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt == maxAttempts {
				return storeErr(opBatchPut, table, ErrThrottled, fmt.Errorf("%d writes left unprocessed", len(pending[table])))
			}
			if err := s.sleep(ctx, attempt); err != nil {
				return err
			}
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return classify(opBatchPut, table, err)
			}
			pending = out.UnprocessedItems
		}
	}
	for _, item := range items {
		if key, err := s.keyOf(Request{Item: item}); err == nil {
			s.invalidate(ctx, table, key)
		}
	}
	return nil
}

// BatchGet busca itens pela chave em lotes de 100. Chaves inexistentes são
// ignoradas, então o resultado pode ser menor que keys e não tem ordem
// garantida.
func (s *Store) BatchGet(ctx context.Context, keys []*expression.Params) ([]Item, error) {
	table := s.cfg.TableName
	_, done := s.begin(ctx, opBatchGet, table)

	items, err := s.batchGet(ctx, table, keys)
	done(err)
	return items, err
}

func (s *Store) batchGet(ctx context.Context, table string, keys []*expression.Params) ([]Item, error) {
	encoded := make([]request.Key, 0, len(keys))
	for i, k := range keys {
		keyParams, err := s.keyOf(Request{Key: k})
		if err != nil {
			return nil, storeErr(opBatchGet, table, ErrInvalidInput, fmt.Errorf("key %d: %w", i, err))
		}
		av, err := expression.EncodeMap(keyParams)
		if err != nil {
			return nil, storeErr(opBatchGet, table, ErrInvalidInput, fmt.Errorf("key %d: %w", i, err))
		}
		encoded = append(encoded, av)
	}

	inputs, err := request.BatchGet(table, encoded)
	if err != nil {
		return nil, storeErr(opBatchGet, table, ErrInvalidInput, err)
	}

	var items []Item
	for _, in := range inputs {
		pending := in.RequestItems
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt == maxAttempts {
				return nil, storeErr(opBatchGet, table, ErrThrottled, fmt.Errorf("%d keys left unprocessed", len(pending[table].Keys)))
			}
			if err := s.sleep(ctx, attempt); err != nil {
				return nil, err
			}
			out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: pending})
			if err != nil {
				return nil, classify(opBatchGet, table, err)
			}
			for _, raw := range out.Responses[table] {
				item, err := decode(raw)
				if err != nil {
					return nil, storeErr(opBatchGet, table, ErrInvalidInput, err)
				}
				items = append(items, item)
			}
			pending = out.UnprocessedKeys
		}
	}
	return items, nil
}

func (s *Store) table(r Request) string {
	if r.Table != "" {
		return r.Table
	}
	return s.cfg.TableName
}

// keyOf retorna a chave primária de r, tirada de r.Key ou, na falta dela,
// dos atributos de chave de r.Item.
func (s *Store) keyOf(r Request) (*expression.Params, error) {
	src := r.Key
	if src.Len() == 0 {
		src = r.Item
	}

	key := expression.NewParams()
	for _, name := range []string{s.cfg.HashKey, s.cfg.SortKey} {
		if name == "" {
			continue
		}
		v, ok := src.Get(name)
		if !ok || v == nil || v == expression.Missing {
			return nil, fmt.Errorf("key attribute %q is required", name)
		}
		if str, isStr := v.(string); isStr {
			if err := validate.NonEmpty(name, str); err != nil {
				return nil, err
			}
		}
		key.Set(name, v)
	}
	if key.Len() == 0 {
		return nil, errors.New("table has no hash key configured")
	}
	return key, nil
}

func (s *Store) requestOptions(r Request) []request.Option {
	if r.Joiner == "" {
		return s.reqOpts
	}
	return append(append([]request.Option{}, s.reqOpts...), request.WithJoiner(r.Joiner))
}

func (s *Store) page(op, table string, raw []map[string]types.AttributeValue, last map[string]types.AttributeValue) (Page, error) {
	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		item, err := decode(r)
		if err != nil {
			return Page{}, storeErr(op, table, ErrInvalidInput, err)
		}
		items = append(items, item)
	}
	token, err := encodeToken(last)
	if err != nil {
		return Page{}, storeErr(op, table, ErrInvalidToken, err)
	}
	return Page{Items: items, Count: len(items), Token: token}, nil
}

func (s *Store) timestamp() int64 {
	return s.now().UnixMilli()
}

func (s *Store) cacheKey(table string, key *expression.Params) string {
	b, err := json.Marshal(key)
	if err != nil {
		return table + ":" + fmt.Sprint(key.Map())
	}
	return table + ":" + string(b)
}

func (s *Store) invalidate(ctx context.Context, table string, key *expression.Params) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(table, key)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("cache invalidation failed")
	}
}

func (s *Store) sleep(ctx context.Context, attempt int) error {
	if attempt == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.backoff << (attempt - 1)):
		return nil
	}
}

// begin anexa os campos da operação ao logger do contexto e retorna uma
// função que registra o resultado.
func (s *Store) begin(ctx context.Context, op, table string) (zerolog.Logger, func(error)) {
	start := time.Now()
	log := zerolog.Ctx(ctx).With().
		Str("operation", op).
		Str("table", table).
		Str("request_id", uuid.NewString()).
		Logger()

	return log, func(err error) {
		elapsed := time.Since(start)
		status := "ok"
		if err != nil {
			status = "error"
			ev := log.Error()
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrInvalidInput) {
				ev = log.Warn()
			}
			ev.Err(err).Dur("elapsed", elapsed).Msg("dynamodb operation failed")
		}
		tags := []string{"operation:" + op, "table:" + table, "status:" + status}
		_ = s.metrics.Count("dynamodb.requests", 1, tags)
		_ = s.metrics.Histogram("dynamodb.latency_ms", float64(elapsed.Milliseconds()), tags)
	}
}

func decode(raw map[string]types.AttributeValue) (Item, error) {
	item := Item{}
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("dyndb: unmarshal failed: %w", err)
	}
	return item, nil
}
