package http

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/km-arc/go-verdure/framework/config"
	"github.com/km-arc/go-verdure/framework/container"
	"github.com/km-arc/go-verdure/framework/routing"
	"github.com/km-arc/go-verdure/framework/validation"
)

// Inspector serves a read-only JSON view of a running container and its
// configuration. It never creates components and never changes settings.
type Inspector struct {
	container *container.Container
	config    *config.Manager
	started   time.Time
}

func NewInspector(c *container.Container, m *config.Manager) *Inspector {
	return &Inspector{container: c, config: m, started: time.Now()}
}

// Routes mounts the inspection endpoints on r:
//
//	GET /health
//	GET /components     ?scope=singleton|prototype|instance  ?resolved=true|false (422 otherwise)
//	GET /config         ?prefix=server
//	GET /config/{key}
//	GET /profiles
func (in *Inspector) Routes(r *routing.Router) {
	r.Get("/health", in.Health)
	r.Get("/components", in.Components)
	r.Get("/config", in.ConfigKeys)
	r.Get("/config/{key}", in.ConfigValue)
	r.Get("/profiles", in.Profiles)
}

// ── Handlers ─────────────────────────────────────────────────────────────────

func (in *Inspector) Health(w http.ResponseWriter, _ *http.Request) {
	NewResponse(w).Success(map[string]any{
		"status":     "up",
		"components": in.container.Store().Len(),
		"profiles":   in.config.ActiveProfiles(),
		"uptime":     time.Since(in.started).Round(time.Second).String(),
	})
}

type componentView struct {
	Name      string           `json:"name"`
	Type      string           `json:"type"`
	Qualifier string           `json:"qualifier,omitempty"`
	Scope     string           `json:"scope"`
	Resolved  bool             `json:"resolved"`
	Stats     *container.Stats `json:"stats,omitempty"`
}

// Components lists stored instances first, sorted by descriptor, then
// definitions that have no stored instance (prototypes and anything not yet
// initialized).
func (in *Inspector) Components(w http.ResponseWriter, r *http.Request) {
	req := NewRequest(r)
	filters := validation.Make(map[string]string{
		"scope":    strings.ToLower(req.Query("scope")),
		"resolved": req.Query("resolved"),
	}, validation.Rules{
		"scope":    "nullable|in:singleton,prototype,instance",
		"resolved": "nullable|boolean",
	})
	if filters.Fails() {
		NewResponse(w).ValidationError(filters.Errors())
		return
	}

	reg := in.container.Registry()
	stats := in.container.AllStats()

	descs := in.container.Store().Descriptors()
	sort.Slice(descs, func(i, j int) bool { return descs[i].String() < descs[j].String() })

	views := make([]componentView, 0, len(descs))
	for _, d := range descs {
		v := componentView{
			Name:      d.String(),
			Type:      d.Type.String(),
			Qualifier: d.Qualifier,
			Scope:     "Instance",
			Resolved:  true,
		}
		if def, ok := reg.Lookup(d.Type); ok && d.Qualifier == "" {
			v.Name = def.Name
			v.Scope = def.Scope.String()
		}
		if s, ok := stats[d]; ok {
			v.Stats = &s
		}
		views = append(views, v)
	}
	for _, def := range reg.Definitions() {
		if in.container.Resolved(def.Type) {
			continue
		}
		views = append(views, componentView{
			Name:  def.Name,
			Type:  def.Type.String(),
			Scope: def.Scope.String(),
		})
	}
	if req.Has("scope") || req.Has("resolved") {
		scope := req.Query("scope")
		resolved, filterResolved := req.QueryBool("resolved")
		kept := views[:0]
		for _, v := range views {
			if scope != "" && !strings.EqualFold(v.Scope, scope) {
				continue
			}
			if filterResolved && v.Resolved != resolved {
				continue
			}
			kept = append(kept, v)
		}
		views = kept
	}
	NewResponse(w).Success(views)
}

// ConfigKeys lists every enumerable key. Environment variables are looked
// up on demand and never listed.
func (in *Inspector) ConfigKeys(w http.ResponseWriter, r *http.Request) {
	keys := in.config.Keys()
	if prefix := NewRequest(r).Query("prefix"); prefix != "" {
		kept := keys[:0]
		for _, k := range keys {
			if k == prefix || strings.HasPrefix(k, prefix+".") {
				kept = append(kept, k)
			}
		}
		keys = kept
	}
	NewResponse(w).Success(keys)
}

func (in *Inspector) ConfigValue(w http.ResponseWriter, r *http.Request) {
	key := NewRequest(r).RouteParam("key")
	v, ok := in.config.Get(key)
	if !ok {
		NewResponse(w).NotFound("Unknown configuration key.")
		return
	}
	NewResponse(w).Success(map[string]any{
		"key":   key,
		"value": v.String(),
	})
}

func (in *Inspector) Profiles(w http.ResponseWriter, _ *http.Request) {
	NewResponse(w).Success(map[string]any{
		"active":    in.config.ActiveProfiles(),
		"available": in.config.Profiles().Names(),
	})
}
