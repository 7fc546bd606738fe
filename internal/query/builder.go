package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrInvalidQuery marks malformed or non-whitelisted request parameters.
// Handlers map it to a 400 response.
var ErrInvalidQuery = errors.New("invalid query parameter")

// operators maps the supported predicate operators to their SQL forms.
var operators = map[string]string{
	"$eq":  "=",
	"$ne":  "<>",
	"$gt":  ">",
	"$gte": ">=",
	"$lt":  "<",
	"$lte": "<=",
	"$in":  "IN",
}

// Values holds the raw, request-controlled query parameters.
type Values struct {
	Where  string
	Sort   string
	Select string
	Skip   string
	Limit  string
	Count  string
}

type condition struct {
	column string
	op     string
	value  interface{}
	values []interface{} // IN only
}

type order struct {
	column string
	desc   bool
}

// Plan is a validated, bounded representation of a client-requested
// filter/sort/projection/pagination. Scope applies the whole plan to a query;
// FilterScope applies only the filter, for the count-only path.
type Plan struct {
	conds      []condition
	orders     []order
	selectCols []string
	omitCols   []string
	skip       int
	limit      int

	// Count requests the cardinality of the filtered set instead of documents.
	Count bool
}

// FromContext builds a Plan from the request's query string. maxLimit bounds
// the page size and doubles as the default when no limit is supplied; zero
// means unbounded.
func FromContext(c *gin.Context, fields FieldSet, maxLimit int) (*Plan, error) {
	return Parse(Values{
		Where:  c.Query("where"),
		Sort:   c.Query("sort"),
		Select: c.Query("select"),
		Skip:   c.Query("skip"),
		Limit:  c.Query("limit"),
		Count:  c.Query("count"),
	}, fields, maxLimit)
}

// Parse validates raw parameter values against the entity's field set and
// produces a Plan.
func Parse(values Values, fields FieldSet, maxLimit int) (*Plan, error) {
	plan := &Plan{limit: maxLimit}

	conds, err := parseWhere(values.Where, fields)
	if err != nil {
		return nil, err
	}
	plan.conds = conds

	orders, err := parseSort(values.Sort, fields)
	if err != nil {
		return nil, err
	}
	plan.orders = orders

	plan.selectCols, plan.omitCols, err = parseSelect(values.Select, fields)
	if err != nil {
		return nil, err
	}

	if values.Skip != "" {
		skip, err := strconv.Atoi(values.Skip)
		if err != nil || skip < 0 {
			return nil, fmt.Errorf("%w: skip must be a non-negative integer", ErrInvalidQuery)
		}
		plan.skip = skip
	}

	if values.Limit != "" {
		limit, err := strconv.Atoi(values.Limit)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidQuery)
		}
		if maxLimit > 0 && limit > maxLimit {
			limit = maxLimit
		}
		plan.limit = limit
	}

	if values.Count != "" {
		count, err := strconv.ParseBool(values.Count)
		if err != nil {
			return nil, fmt.Errorf("%w: count must be a boolean", ErrInvalidQuery)
		}
		plan.Count = count
	}

	return plan, nil
}

// Scope applies the full plan: filter, sort, projection and pagination.
func (p *Plan) Scope() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = p.FilterScope()(db)
		for _, o := range p.orders {
			direction := "ASC"
			if o.desc {
				direction = "DESC"
			}
			db = db.Order(o.column + " " + direction)
		}
		if len(p.selectCols) > 0 {
			db = db.Select(p.selectCols)
		}
		if len(p.omitCols) > 0 {
			db = db.Omit(p.omitCols...)
		}
		if p.skip > 0 {
			db = db.Offset(p.skip)
		}
		if p.limit > 0 {
			db = db.Limit(p.limit)
		}
		return db
	}
}

// FilterScope applies only the filter predicate. Counting uses it so that
// skip/limit/projection never affect cardinality.
func (p *Plan) FilterScope() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, cond := range p.conds {
			if cond.op == "IN" {
				db = db.Where(cond.column+" IN ?", cond.values)
				continue
			}
			db = db.Where(fmt.Sprintf("%s %s ?", cond.column, cond.op), cond.value)
		}
		return db
	}
}

// ProjectionScope parses a standalone select parameter, for single-document
// reads that take no other query options.
func ProjectionScope(raw string, fields FieldSet) (func(db *gorm.DB) *gorm.DB, error) {
	selectCols, omitCols, err := parseSelect(raw, fields)
	if err != nil {
		return nil, err
	}
	return func(db *gorm.DB) *gorm.DB {
		if len(selectCols) > 0 {
			db = db.Select(selectCols)
		}
		if len(omitCols) > 0 {
			db = db.Omit(omitCols...)
		}
		return db
	}, nil
}

func parseWhere(raw string, fields FieldSet) ([]condition, error) {
	if raw == "" {
		return nil, nil
	}

	var filter map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &filter); err != nil {
		return nil, fmt.Errorf("%w: where must be a JSON object", ErrInvalidQuery)
	}

	var conds []condition
	for name, value := range filter {
		field, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, name)
		}

		opObject, ok := value.(map[string]interface{})
		if !ok {
			coerced, err := coerceValue(field, value)
			if err != nil {
				return nil, err
			}
			conds = append(conds, condition{column: field.Column, op: "=", value: coerced})
			continue
		}

		for opName, opValue := range opObject {
			sqlOp, ok := operators[opName]
			if !ok {
				return nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidQuery, opName)
			}

			if sqlOp == "IN" {
				list, ok := opValue.([]interface{})
				if !ok {
					return nil, fmt.Errorf("%w: $in expects an array", ErrInvalidQuery)
				}
				values := make([]interface{}, 0, len(list))
				for _, item := range list {
					coerced, err := coerceValue(field, item)
					if err != nil {
						return nil, err
					}
					values = append(values, coerced)
				}
				conds = append(conds, condition{column: field.Column, op: "IN", values: values})
				continue
			}

			coerced, err := coerceValue(field, opValue)
			if err != nil {
				return nil, err
			}
			conds = append(conds, condition{column: field.Column, op: sqlOp, value: coerced})
		}
	}

	return conds, nil
}

// coerceValue rejects nested structures and converts timestamp fields from
// their wire forms (epoch milliseconds or RFC3339).
func coerceValue(field Field, value interface{}) (interface{}, error) {
	if field.IsTime {
		switch v := value.(type) {
		case float64:
			return time.UnixMilli(int64(v)), nil
		case string:
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid timestamp %q", ErrInvalidQuery, v)
			}
			return t, nil
		default:
			return nil, fmt.Errorf("%w: invalid timestamp value", ErrInvalidQuery)
		}
	}

	switch value.(type) {
	case string, bool, float64:
		return value, nil
	default:
		return nil, fmt.Errorf("%w: unsupported filter value", ErrInvalidQuery)
	}
}

func parseSort(raw string, fields FieldSet) ([]order, error) {
	if raw == "" {
		return nil, nil
	}

	var orders []order
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		desc := strings.HasPrefix(token, "-")
		name := strings.TrimPrefix(token, "-")
		field, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown sort field %q", ErrInvalidQuery, name)
		}
		orders = append(orders, order{column: field.Column, desc: desc})
	}

	return orders, nil
}

// parseSelect accepts either a JSON array of field names (an include list) or
// a JSON object of field:1 / field:0 flags. Mixing include and exclude flags
// is rejected.
func parseSelect(raw string, fields FieldSet) (selectCols, omitCols []string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, nil
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err == nil {
		for _, name := range names {
			field, ok := fields[name]
			if !ok {
				return nil, nil, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, name)
			}
			selectCols = append(selectCols, field.Column)
		}
		return selectCols, nil, nil
	}

	var projection map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &projection); err != nil {
		return nil, nil, fmt.Errorf("%w: select must be a JSON array or object", ErrInvalidQuery)
	}

	for name, flag := range projection {
		field, ok := fields[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, name)
		}

		include, ok := projectionFlag(flag)
		if !ok {
			return nil, nil, fmt.Errorf("%w: select flags must be 0 or 1", ErrInvalidQuery)
		}
		if include {
			selectCols = append(selectCols, field.Column)
		} else {
			omitCols = append(omitCols, field.Column)
		}
	}

	if len(selectCols) > 0 && len(omitCols) > 0 {
		return nil, nil, fmt.Errorf("%w: select cannot mix inclusion and exclusion", ErrInvalidQuery)
	}
	return selectCols, omitCols, nil
}

func projectionFlag(value interface{}) (include, ok bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case float64:
		if v == 1 {
			return true, true
		}
		if v == 0 {
			return false, true
		}
	}
	return false, false
}
