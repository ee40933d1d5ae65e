package api

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"reflect"
	"slices"
	"sync"

	"github.com/aretw0/mcpbridge/pkg/domain"
)

// API collects operation declarations, one Version per description group.
type API struct {
	mu       sync.Mutex
	versions []*Version
	errs     []error
}

// New creates an empty API.
func New() *API {
	return &API{}
}

// Version returns the named version, creating it on first use.
// Versions keep their creation order.
func (a *API) Version(name string) *Version {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, v := range a.versions {
		if v.name == name {
			return v
		}
	}
	v := &Version{api: a, name: name}
	a.versions = append(a.versions, v)
	return v
}

func (a *API) fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs = append(a.errs, err)
}

// Err reports declaration errors, such as unknown methods or parameters left unnamed.
func (a *API) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	errs := slices.Clone(a.errs)
	for _, v := range a.versions {
		for _, r := range v.routes {
			if r.next < len(r.op.Params) {
				errs = append(errs, fmt.Errorf("%s %s: %d of %d parameters are not declared", v.name, r.op.ID(), len(r.op.Params)-r.next, len(r.op.Params)))
			}
		}
	}
	return errors.Join(errs...)
}

// Groups returns a snapshot of every version's operations.
func (a *API) Groups() []domain.DescriptionGroup {
	a.mu.Lock()
	defer a.mu.Unlock()

	groups := make([]domain.DescriptionGroup, 0, len(a.versions))
	for _, v := range a.versions {
		g := domain.DescriptionGroup{Name: v.name}
		for _, r := range v.routes {
			g.Operations = append(g.Operations, r.snapshot())
		}
		groups = append(groups, g)
	}
	return groups
}

// Version is one description group.
type Version struct {
	api    *API
	name   string
	routes []*Route
}

// Name returns the version name.
func (v *Version) Name() string {
	return v.name
}

// Controller starts declaring operations backed by methods of owner's type.
// owner is usually a typed nil pointer, such as (*weather.Controller)(nil).
func (v *Version) Controller(group string, owner any) *Controller {
	return &Controller{version: v, group: group, owner: reflect.TypeOf(owner)}
}

// Endpoint declares an operation that is not backed by a method, such as a
// static file or a health probe. Discovery skips it.
func (v *Version) Endpoint(group, name, method, pattern string) *Route {
	r := &Route{api: v.api, op: domain.Operation{Group: group, Name: name, Method: method, Pattern: pattern}}
	v.api.mu.Lock()
	v.routes = append(v.routes, r)
	v.api.mu.Unlock()
	return r
}

// Controller declares operations on one owning type.
type Controller struct {
	version *Version
	group   string
	owner   reflect.Type
}

func (c *Controller) Get(pattern, method string) *Route {
	return c.Route(http.MethodGet, pattern, method)
}

func (c *Controller) Post(pattern, method string) *Route {
	return c.Route(http.MethodPost, pattern, method)
}

func (c *Controller) Put(pattern, method string) *Route {
	return c.Route(http.MethodPut, pattern, method)
}

func (c *Controller) Delete(pattern, method string) *Route {
	return c.Route(http.MethodDelete, pattern, method)
}

// Route declares the named method under httpMethod and pattern. An empty
// httpMethod leaves the method to the constraints set with Methods.
func (c *Controller) Route(httpMethod, pattern, name string) *Route {
	r := &Route{
		api: c.version.api,
		op: domain.Operation{
			Group:   c.group,
			Name:    name,
			Method:  httpMethod,
			Pattern: pattern,
		},
	}

	h, err := domain.NewHandler(c.owner, name)
	if err != nil {
		c.version.api.fail(fmt.Errorf("%s %s.%s: %w", c.version.name, c.group, name, err))
	} else {
		r.op.Handler = h
		r.op.Returns = h.Returns()
		for _, t := range h.Params() {
			r.op.Params = append(r.op.Params, domain.Param{Type: t})
		}
	}

	c.version.api.mu.Lock()
	c.version.routes = append(c.version.routes, r)
	c.version.api.mu.Unlock()
	return r
}

// Route is an operation under declaration. Its methods chain.
type Route struct {
	api  *API
	op   domain.Operation
	next int
}

func (r *Route) snapshot() domain.Operation {
	op := r.op
	op.Params = slices.Clone(r.op.Params)
	for i := range op.Params {
		if op.Params[i].Name == "" {
			op.Params[i].Name = fmt.Sprintf("arg%d", i)
			op.Params[i].Source = domain.SourceQuery
		}
	}
	op.Responses = slices.Clone(r.op.Responses)
	op.Constraints = slices.Clone(r.op.Constraints)
	op.RouteValues = maps.Clone(r.op.RouteValues)
	return op
}

// Describe sets the operation description.
func (r *Route) Describe(description string) *Route {
	r.op.Description = description
	return r
}

func (r *Route) bind(src domain.ParamSource, names ...string) *Route {
	for _, name := range names {
		if r.next >= len(r.op.Params) {
			r.api.fail(fmt.Errorf("%s: parameter %q does not match any method parameter", r.op.ID(), name))
			return r
		}
		r.op.Params[r.next].Name = name
		r.op.Params[r.next].Source = src
		r.next++
	}
	return r
}

// Path names the next parameters as route parameters.
func (r *Route) Path(names ...string) *Route {
	return r.bind(domain.SourcePath, names...)
}

// Query names the next parameters as query string parameters.
func (r *Route) Query(names ...string) *Route {
	return r.bind(domain.SourceQuery, names...)
}

// Body names the next parameter as the request body.
func (r *Route) Body(name string) *Route {
	return r.bind(domain.SourceBody, name)
}

// QueryOptions names the next parameter as the $-prefixed query options.
func (r *Route) QueryOptions(name string) *Route {
	return r.bind(domain.SourceQueryOptions, name)
}

// Required marks already named parameters as required.
func (r *Route) Required(names ...string) *Route {
	for _, name := range names {
		if i := r.param(name); i >= 0 {
			r.op.Params[i].Required = true
		}
	}
	return r
}

// Doc documents an already named parameter.
func (r *Route) Doc(name, description string) *Route {
	if i := r.param(name); i >= 0 {
		r.op.Params[i].Description = description
	}
	return r
}

func (r *Route) param(name string) int {
	for i, p := range r.op.Params {
		if p.Name == name {
			return i
		}
	}
	r.api.fail(fmt.Errorf("%s: unknown parameter %q", r.op.ID(), name))
	return -1
}

// Produces declares a possible response. sample is a value of the response
// body type, or nil for responses without a body.
func (r *Route) Produces(status int, sample any) *Route {
	rt := domain.ResponseType{StatusCode: status}
	if sample != nil {
		rt.Type = reflect.TypeOf(sample)
	}
	r.op.Responses = append(r.op.Responses, rt)
	return r
}

// Methods sets the accepted HTTP methods, used when no method is declared.
func (r *Route) Methods(methods ...string) *Route {
	r.op.Constraints = append(r.op.Constraints, methods...)
	return r
}

// Defaults sets static route values merged under every call's arguments.
func (r *Route) Defaults(values map[string]string) *Route {
	if r.op.RouteValues == nil {
		r.op.RouteValues = make(map[string]string, len(values))
	}
	maps.Copy(r.op.RouteValues, values)
	return r
}
