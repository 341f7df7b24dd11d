// Copyright 2023 The TBox Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tboxhttp serves the reasoner query API over HTTP.
//
// Queries are read-only bit tests against the last materialization and are
// safe under any request concurrency. POST /api/v1/materialize is the one
// mutating endpoint; overlapping calls are rejected, not queued.
package tboxhttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tboxgraph/tbox/ontology"
	"github.com/tboxgraph/tbox/reasoner"
)

const prefix = "/api/v1"

// NewAPI creates an API over the store with default options.
func NewAPI(s *ontology.Store, wrappers ...HandlerWrapper) *API {
	r := httprouter.New()
	api := &API{store: s}
	api.registerOn(r)
	var handler http.Handler = r
	for _, wrapper := range wrappers {
		handler = wrapper(handler)
	}
	api.handler = handler
	return api
}

// NewBoundAPI creates an API bound to a given httprouter.Router.
func NewBoundAPI(s *ontology.Store, r *httprouter.Router) *API {
	api := &API{store: s, handler: r}
	api.registerOn(r)
	return api
}

// API exposes subsumption, equivalence and characteristic queries plus
// materialization control for one ontology store.
type API struct {
	store   *ontology.Store
	ro      bool
	handler http.Handler
}

// SetReadOnly disables the materialize endpoint.
func (api *API) SetReadOnly(ro bool) {
	api.ro = ro
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.handler.ServeHTTP(w, r)
}

type HandlerWrapper func(http.Handler) http.Handler

func toHandle(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		handler(w, r)
	}
}

func (api *API) registerOn(r *httprouter.Router) {
	r.GET(prefix+"/subclass", toHandle(api.ServeSubClassOf))
	r.GET(prefix+"/equivalent", toHandle(api.ServeEquivalent))
	r.GET(prefix+"/characteristic", toHandle(api.ServeCharacteristic))
	r.GET(prefix+"/stats", toHandle(api.ServeStats))
	r.POST(prefix+"/materialize", toHandle(api.ServeMaterialize))
	r.GET("/health", toHandle(api.ServeHealth))
	r.Handler("GET", "/metrics", promhttp.Handler())
}

func jsonResponse(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, code int, err error) {
	jsonResponse(w, code, map[string]string{"error": err.Error()})
}

func errCode(err error) int {
	var oor *reasoner.OutOfRangeError
	switch {
	case errors.As(err, &oor):
		return http.StatusBadRequest
	case errors.Is(err, reasoner.ErrMaterializing):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func termParam(r *http.Request, name string) (quad.Value, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, errors.New("missing parameter: " + name)
	}
	return quad.IRI(v).Full(), nil
}

type boolResult struct {
	Result bool `json:"result"`
}

// ServeSubClassOf answers GET /api/v1/subclass?sub=<iri>&sup=<iri>.
func (api *API) ServeSubClassOf(w http.ResponseWriter, r *http.Request) {
	sub, err := termParam(r, "sub")
	if err != nil {
		jsonError(w, http.StatusBadRequest, err)
		return
	}
	sup, err := termParam(r, "sup")
	if err != nil {
		jsonError(w, http.StatusBadRequest, err)
		return
	}
	ok, err := api.store.IsSubClassOf(sub, sup)
	if err != nil {
		jsonError(w, errCode(err), err)
		return
	}
	mQueries.WithLabelValues("subclass").Inc()
	jsonResponse(w, http.StatusOK, boolResult{Result: ok})
}

// ServeEquivalent answers GET /api/v1/equivalent?a=<iri>&b=<iri>.
func (api *API) ServeEquivalent(w http.ResponseWriter, r *http.Request) {
	a, err := termParam(r, "a")
	if err != nil {
		jsonError(w, http.StatusBadRequest, err)
		return
	}
	b, err := termParam(r, "b")
	if err != nil {
		jsonError(w, http.StatusBadRequest, err)
		return
	}
	ok, err := api.store.IsEquivalent(a, b)
	if err != nil {
		jsonError(w, errCode(err), err)
		return
	}
	mQueries.WithLabelValues("equivalent").Inc()
	jsonResponse(w, http.StatusOK, boolResult{Result: ok})
}

// ServeCharacteristic answers
// GET /api/v1/characteristic?property=<iri>&flag=<name>.
func (api *API) ServeCharacteristic(w http.ResponseWriter, r *http.Request) {
	p, err := termParam(r, "property")
	if err != nil {
		jsonError(w, http.StatusBadRequest, err)
		return
	}
	flag := r.URL.Query().Get("flag")
	c, ok := reasoner.ParseCharacteristic(flag)
	if !ok {
		jsonError(w, http.StatusBadRequest, errors.New("unknown characteristic: "+flag))
		return
	}
	res, err := api.store.HasCharacteristic(p, c)
	if err != nil {
		jsonError(w, errCode(err), err)
		return
	}
	mQueries.WithLabelValues("characteristic").Inc()
	jsonResponse(w, http.StatusOK, boolResult{Result: res})
}

type statsResult struct {
	State      string `json:"state"`
	Generation uint64 `json:"generation"`
	Inferences uint64 `json:"inferences"`
	Cycles     uint64 `json:"cycles"`
	Capacity   uint32 `json:"capacity"`
	Names      int    `json:"names"`
	Skipped    uint64 `json:"skipped_quads"`
}

// ServeStats answers GET /api/v1/stats.
func (api *API) ServeStats(w http.ResponseWriter, r *http.Request) {
	eng := api.store.Engine()
	jsonResponse(w, http.StatusOK, statsResult{
		State:      eng.State().String(),
		Generation: eng.Generation(),
		Inferences: eng.InferenceCount(),
		Cycles:     eng.MaterializationCycles(),
		Capacity:   eng.Capacity(),
		Names:      api.store.Namer().Len(),
		Skipped:    api.store.Skipped(),
	})
}

type materializeResult struct {
	Derived    uint64 `json:"derived"`
	Cycles     uint64 `json:"cycles"`
	Generation uint64 `json:"generation"`
}

// ServeMaterialize answers POST /api/v1/materialize?mode=full|sparse.
func (api *API) ServeMaterialize(w http.ResponseWriter, r *http.Request) {
	if api.ro {
		jsonError(w, http.StatusForbidden, errors.New("server is in read-only mode"))
		return
	}
	eng := api.store.Engine()
	mode := r.URL.Query().Get("mode")
	start := time.Now()
	var (
		derived uint64
		err     error
	)
	switch mode {
	case "", "full":
		derived, err = eng.Materialize()
	case "sparse":
		derived, err = eng.MaterializeSparse()
	default:
		jsonError(w, http.StatusBadRequest, errors.New("unknown materialization mode: "+mode))
		return
	}
	if err != nil {
		jsonError(w, errCode(err), err)
		return
	}
	mMaterializeSeconds.Observe(time.Since(start).Seconds())
	mDerivedFacts.Set(float64(derived))
	mMaterializeCycles.Set(float64(eng.MaterializationCycles()))
	jsonResponse(w, http.StatusOK, materializeResult{
		Derived:    derived,
		Cycles:     eng.MaterializationCycles(),
		Generation: eng.Generation(),
	})
}

// ServeHealth answers GET /health.
func (api *API) ServeHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{
		"status": "ok",
		"state":  api.store.Engine().State().String(),
	})
}
