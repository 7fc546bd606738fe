package query

// Field describes one queryable entity field: the backing column and whether
// values should be coerced to timestamps.
type Field struct {
	Column string
	IsTime bool
}

// FieldSet whitelists the request-visible field names of an entity. Filter,
// sort and projection parameters are validated against it; anything outside
// the set is rejected before it can reach the query layer.
type FieldSet map[string]Field

// TaskFields lists the queryable fields of a task.
var TaskFields = FieldSet{
	"id":               {Column: "id"},
	"name":             {Column: "name"},
	"description":      {Column: "description"},
	"deadline":         {Column: "deadline", IsTime: true},
	"completed":        {Column: "completed"},
	"assignedUser":     {Column: "assigned_user"},
	"assignedUserName": {Column: "assigned_user_name"},
	"dateCreated":      {Column: "date_created", IsTime: true},
}

// UserFields lists the queryable fields of a user.
var UserFields = FieldSet{
	"id":           {Column: "id"},
	"name":         {Column: "name"},
	"email":        {Column: "email"},
	"pendingTasks": {Column: "pending_tasks"},
	"dateCreated":  {Column: "date_created", IsTime: true},
}
