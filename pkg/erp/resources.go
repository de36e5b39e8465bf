package erp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrUnknownEntity = errors.New("unknown entity")
	ErrCountMissing  = errors.New("response did not include a count")
)

// Entity base paths.
const (
	AccountsPath         = "/accounts"
	ItemAlternativesPath = "/item-alternatives"
	LocationCodesPath    = "/location-codes"
	ProductionLinesPath  = "/production-lines"
)

// Entity field tables. These are the authoritative wire column lists.
var (
	AccountFields = MustFieldTable(
		"CODE", "TITLE", "ACCOUNT_TYPE", "PARENT_CODE", "CURRENCY",
		"IS_ACTIVE", "BALANCE", "DATE_CREATED", "DATE_MODIFIED",
	)
	ItemAlternativeFields = MustFieldTable(
		"ID", "ITEM_CODE", "ALTERNATIVE_ITEM_CODE", "PRIORITY", "RATIO",
		"IS_ACTIVE", "DATE_CREATED",
	)
	LocationCodeFields = MustFieldTable(
		"CODE", "TITLE", "WAREHOUSE_CODE", "LOCATION_TYPE", "CAPACITY",
		"IS_BLOCKED", "DATE_CREATED",
	)
	ProductionLineFields = MustFieldTable(
		"CODE", "TITLE", "PLANT_CODE", "STATUS", "CAPACITY_PER_HOUR",
		"SHIFT_COUNT", "DATE_CREATED",
	)
)

// Entity describes one REST resource: its CLI name, base path and columns.
type Entity struct {
	Name   string
	Path   string
	Fields *FieldTable
}

var entities = map[string]Entity{
	"accounts":          {Name: "accounts", Path: AccountsPath, Fields: AccountFields},
	"item-alternatives": {Name: "item-alternatives", Path: ItemAlternativesPath, Fields: ItemAlternativeFields},
	"location-codes":    {Name: "location-codes", Path: LocationCodesPath, Fields: LocationCodeFields},
	"production-lines":  {Name: "production-lines", Path: ProductionLinesPath, Fields: ProductionLineFields},
}

// Entities returns every known entity sorted by name.
func Entities() []Entity {
	out := make([]Entity, 0, len(entities))
	for _, entity := range entities {
		out = append(out, entity)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// LookupEntity finds an entity by name.
func LookupEntity(name string) (Entity, error) {
	entity, ok := entities[name]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %q", ErrUnknownEntity, name)
	}

	return entity, nil
}

// ListResponse is the list envelope returned by every entity.
type ListResponse[T any] struct {
	Data  []T  `json:"data"            yaml:"data"`
	Count *int `json:"count,omitempty" yaml:"count,omitempty"`
}

// Record is an untyped entity row keyed by wire column name.
type Record map[string]interface{}

// Account is a ledger account.
type Account struct {
	Code         string  `json:"CODE"                    yaml:"code"`
	Title        string  `json:"TITLE"                   yaml:"title"`
	AccountType  string  `json:"ACCOUNT_TYPE,omitempty"  yaml:"account_type,omitempty"`
	ParentCode   string  `json:"PARENT_CODE,omitempty"   yaml:"parent_code,omitempty"`
	Currency     string  `json:"CURRENCY,omitempty"      yaml:"currency,omitempty"`
	IsActive     bool    `json:"IS_ACTIVE"               yaml:"is_active"`
	Balance      float64 `json:"BALANCE"                 yaml:"balance"`
	DateCreated  string  `json:"DATE_CREATED,omitempty"  yaml:"date_created,omitempty"`
	DateModified string  `json:"DATE_MODIFIED,omitempty" yaml:"date_modified,omitempty"`
}

// AccountBalance is the balance of an account on a given date.
type AccountBalance struct {
	Code     string  `json:"CODE"               yaml:"code"`
	Date     string  `json:"DATE"               yaml:"date"`
	Debit    float64 `json:"DEBIT"              yaml:"debit"`
	Credit   float64 `json:"CREDIT"             yaml:"credit"`
	Balance  float64 `json:"BALANCE"            yaml:"balance"`
	Currency string  `json:"CURRENCY,omitempty" yaml:"currency,omitempty"`
}

// ItemAlternative links an item to a substitute item.
type ItemAlternative struct {
	ID                  int64   `json:"ID,omitempty"           yaml:"id,omitempty"`
	ItemCode            string  `json:"ITEM_CODE"              yaml:"item_code"`
	AlternativeItemCode string  `json:"ALTERNATIVE_ITEM_CODE"  yaml:"alternative_item_code"`
	Priority            int     `json:"PRIORITY"               yaml:"priority"`
	Ratio               float64 `json:"RATIO"                  yaml:"ratio"`
	IsActive            bool    `json:"IS_ACTIVE"              yaml:"is_active"`
	DateCreated         string  `json:"DATE_CREATED,omitempty" yaml:"date_created,omitempty"`
}

// LocationCode is a storage location inside a warehouse.
type LocationCode struct {
	Code          string  `json:"CODE"                    yaml:"code"`
	Title         string  `json:"TITLE"                   yaml:"title"`
	WarehouseCode string  `json:"WAREHOUSE_CODE"          yaml:"warehouse_code"`
	LocationType  string  `json:"LOCATION_TYPE,omitempty" yaml:"location_type,omitempty"`
	Capacity      float64 `json:"CAPACITY"                yaml:"capacity"`
	IsBlocked     bool    `json:"IS_BLOCKED"              yaml:"is_blocked"`
	DateCreated   string  `json:"DATE_CREATED,omitempty"  yaml:"date_created,omitempty"`
}

// ProductionLine is a manufacturing line in a plant.
type ProductionLine struct {
	Code            string  `json:"CODE"                   yaml:"code"`
	Title           string  `json:"TITLE"                  yaml:"title"`
	PlantCode       string  `json:"PLANT_CODE"             yaml:"plant_code"`
	Status          string  `json:"STATUS,omitempty"       yaml:"status,omitempty"`
	CapacityPerHour float64 `json:"CAPACITY_PER_HOUR"      yaml:"capacity_per_hour"`
	ShiftCount      int     `json:"SHIFT_COUNT"            yaml:"shift_count"`
	DateCreated     string  `json:"DATE_CREATED,omitempty" yaml:"date_created,omitempty"`
}

// ProductionLineCapacity is the planned and used capacity of a line over a period.
type ProductionLineCapacity struct {
	Code        string  `json:"CODE"         yaml:"code"`
	From        string  `json:"FROM"         yaml:"from"`
	To          string  `json:"TO"           yaml:"to"`
	PlannedHour float64 `json:"PLANNED_HOUR" yaml:"planned_hour"`
	UsedHour    float64 `json:"USED_HOUR"    yaml:"used_hour"`
	Utilization float64 `json:"UTILIZATION"  yaml:"utilization"`
}

// EntityClient is the operation set shared by every entity.
type EntityClient[T any] interface {
	Fields() *FieldTable
	GetAll(ctx context.Context, opts *QueryOptions) (*ListResponse[T], error)
	Find(ctx context.Context, criteria Criteria, opts *QueryOptions) (*ListResponse[T], error)
	FindExpr(ctx context.Context, expr Expr, opts *QueryOptions) (*ListResponse[T], error)
	GetByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, entity *T) (*T, error)
	Update(ctx context.Context, id string, entity *T) (*T, error)
	Patch(ctx context.Context, id string, fields map[string]interface{}) (*T, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, criteria Criteria) (int, error)
}

// AccountsClient defines operations for accounts.
type AccountsClient interface {
	EntityClient[Account]
	GetBalance(ctx context.Context, code string, asOf time.Time) (*AccountBalance, error)
	ListChildren(ctx context.Context, code string, opts *QueryOptions) (*ListResponse[Account], error)
}

// ItemAlternativesClient defines operations for item alternatives.
type ItemAlternativesClient interface {
	EntityClient[ItemAlternative]
	ListForItem(ctx context.Context, itemCode string, opts *QueryOptions) (*ListResponse[ItemAlternative], error)
	Activate(ctx context.Context, id string) (*ItemAlternative, error)
	Deactivate(ctx context.Context, id string) (*ItemAlternative, error)
}

// LocationCodesClient defines operations for location codes.
type LocationCodesClient interface {
	EntityClient[LocationCode]
	SearchByCode(ctx context.Context, pattern string, opts *QueryOptions) (*ListResponse[LocationCode], error)
	Block(ctx context.Context, code, reason string) (*LocationCode, error)
	Unblock(ctx context.Context, code string) (*LocationCode, error)
}

// ProductionLinesClient defines operations for production lines.
type ProductionLinesClient interface {
	EntityClient[ProductionLine]
	Start(ctx context.Context, code string) (*ProductionLine, error)
	Stop(ctx context.Context, code string) (*ProductionLine, error)
	GetCapacity(ctx context.Context, code string, from, to time.Time) (*ProductionLineCapacity, error)
}
