package api

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ResourceName identifies a backend resource family.
type ResourceName string

const (
	Members         ResourceName = "members"
	Classes         ResourceName = "classes"
	Bookings        ResourceName = "bookings"
	Payments        ResourceName = "payments"
	Trainers        ResourceName = "trainers"
	Progress        ResourceName = "progress"
	ContactMessages ResourceName = "contact-messages"
	Admins          ResourceName = "admins"
)

// Verb is a generic operation on a resource.
type Verb string

const (
	VerbList   Verb = "list"
	VerbGet    Verb = "get"
	VerbCreate Verb = "create"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
)

// Route binds a (resource, verb) pair to a request shape. Path may contain
// the "{id}" placeholder.
type Route struct {
	Method   Method
	Path     string
	SkipAuth bool
}

const idPlaceholder = "{id}"

// NeedsID reports whether the route path has an {id} placeholder.
func (r Route) NeedsID() bool {
	return strings.Contains(r.Path, idPlaceholder)
}

// Endpoint renders the path with id substituted (path-escaped).
func (r Route) Endpoint(id string) (string, error) {
	if !r.NeedsID() {
		return r.Path, nil
	}
	if id == "" {
		return "", fmt.Errorf("%s %s: id is required", r.Method, r.Path)
	}
	return strings.Replace(r.Path, idPlaceholder, url.PathEscape(id), 1), nil
}

func collection(p string) func(Method) Route {
	return func(m Method) Route { return Route{Method: m, Path: "/" + p} }
}

func item(p string) func(Method) Route {
	return func(m Method) Route { return Route{Method: m, Path: "/" + p + "/" + idPlaceholder} }
}

// crud returns the full list/get/create/update/delete binding for a path.
func crud(p string) map[Verb]Route {
	col, one := collection(p), item(p)
	return map[Verb]Route{
		VerbList:   col(MethodGet),
		VerbGet:    one(MethodGet),
		VerbCreate: col(MethodPost),
		VerbUpdate: one(MethodPut),
		VerbDelete: one(MethodDelete),
	}
}

// cru is crud without delete.
func cru(p string) map[Verb]Route {
	r := crud(p)
	delete(r, VerbDelete)
	return r
}

// resourceRoutes is the declarative (resource, verb) -> (method, path) table.
var resourceRoutes = map[ResourceName]map[Verb]Route{
	Members: crud("members"),
	Classes: crud("classes"),
	Bookings: {
		VerbCreate: {Method: MethodPost, Path: "/class-bookings"},
		VerbList:   collection("bookings")(MethodGet),
		VerbGet:    item("bookings")(MethodGet),
		VerbUpdate: item("bookings")(MethodPut),
		VerbDelete: item("bookings")(MethodDelete),
	},
	Payments: cru("payments"),
	Trainers: cru("trainers"),
	Progress: cru("progress"),
	ContactMessages: {
		VerbCreate: {Method: MethodPost, Path: "/contact-messages", SkipAuth: true},
		VerbList:   collection("contact-messages")(MethodGet),
	},
	Admins: {
		VerbCreate: collection("admins")(MethodPost),
		VerbList:   collection("admins")(MethodGet),
		VerbGet:    item("admins")(MethodGet),
	},
}

// ResourceNames returns every bound resource, sorted.
func ResourceNames() []ResourceName {
	names := make([]ResourceName, 0, len(resourceRoutes))
	for n := range resourceRoutes {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// LookupRoute returns the binding for (name, verb).
func LookupRoute(name ResourceName, verb Verb) (Route, bool) {
	verbs, ok := resourceRoutes[name]
	if !ok {
		return Route{}, false
	}
	r, ok := verbs[verb]
	return r, ok
}

// Verbs returns the verbs bound for a resource, sorted.
func Verbs(name ResourceName) []Verb {
	verbs := make([]Verb, 0, len(resourceRoutes[name]))
	for v := range resourceRoutes[name] {
		verbs = append(verbs, v)
	}
	sort.Slice(verbs, func(i, j int) bool { return verbs[i] < verbs[j] })
	return verbs
}

// ResourceClient issues the table-bound calls for one resource.
type ResourceClient struct {
	client *Client
	name   ResourceName
}

// Resource returns the bound operations for name.
func (c *Client) Resource(name ResourceName) *ResourceClient {
	return &ResourceClient{client: c, name: name}
}

// Name returns the resource name.
func (r *ResourceClient) Name() ResourceName {
	return r.name
}

// Do runs verb against the resource. id is ignored for collection routes,
// payload is ignored when nil. An unbound verb returns ErrUnsupportedOperation
// without sending anything.
func (r *ResourceClient) Do(ctx context.Context, verb Verb, id string, payload any) (*Response, error) {
	return r.do(ctx, verb, id, payload, nil)
}

func (r *ResourceClient) do(ctx context.Context, verb Verb, id string, payload any, headers map[string]string) (*Response, error) {
	route, ok := LookupRoute(r.name, verb)
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", verb, r.name, ErrUnsupportedOperation)
	}
	endpoint, err := route.Endpoint(id)
	if err != nil {
		return nil, err
	}
	return r.client.Call(ctx, endpoint, CallOptions{
		Method:   route.Method,
		Headers:  headers,
		Body:     payload,
		SkipAuth: route.SkipAuth,
	})
}

// List fetches the collection.
func (r *ResourceClient) List(ctx context.Context) (*Response, error) {
	return r.Do(ctx, VerbList, "", nil)
}

// Get fetches one item.
func (r *ResourceClient) Get(ctx context.Context, id string) (*Response, error) {
	return r.Do(ctx, VerbGet, id, nil)
}

// Create posts a new item.
func (r *ResourceClient) Create(ctx context.Context, payload any) (*Response, error) {
	return r.Do(ctx, VerbCreate, "", payload)
}

// Update replaces an item.
func (r *ResourceClient) Update(ctx context.Context, id string, payload any) (*Response, error) {
	return r.Do(ctx, VerbUpdate, id, payload)
}

// Delete removes an item.
func (r *ResourceClient) Delete(ctx context.Context, id string) (*Response, error) {
	return r.Do(ctx, VerbDelete, id, nil)
}
