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

package tboxhttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/cayleygraph/quad/nquads"
	"github.com/stretchr/testify/require"

	"github.com/tboxgraph/tbox/ontology"
)

const testData = `
<http://example.org/Dog> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/Mammal> .
<http://example.org/Mammal> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/Animal> .
<http://example.org/Human> <http://www.w3.org/2002/07/owl#equivalentClass> <http://example.org/Person> .
<http://example.org/partOf> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#TransitiveProperty> .
`

func serveTestAPI(t testing.TB) (*ontology.Store, *httptest.Server) {
	s, err := ontology.NewStore(32)
	require.NoError(t, err)
	_, err = s.ReadFrom(nquads.NewReader(strings.NewReader(testData), true))
	require.NoError(t, err)
	srv := httptest.NewServer(NewAPI(s))
	t.Cleanup(func() {
		srv.Close()
		s.Close()
	})
	return s, srv
}

func getJSON(t testing.TB, srv *httptest.Server, path string, out interface{}) int {
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func postJSON(t testing.TB, srv *httptest.Server, path string, out interface{}) int {
	resp, err := srv.Client().Post(srv.URL+path, "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func queryPath(endpoint string, params map[string]string) string {
	q := make(url.Values)
	for k, v := range params {
		q.Set(k, v)
	}
	return "/api/v1/" + endpoint + "?" + q.Encode()
}

func TestMaterializeAndQuery(t *testing.T) {
	_, srv := serveTestAPI(t)

	var mat materializeResult
	code := postJSON(t, srv, "/api/v1/materialize", &mat)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, mat.Generation)
	// the one fact not asserted directly: Dog under Animal
	require.EqualValues(t, 1, mat.Derived)

	var res boolResult
	code = getJSON(t, srv, queryPath("subclass", map[string]string{
		"sub": "http://example.org/Dog",
		"sup": "http://example.org/Animal",
	}), &res)
	require.Equal(t, http.StatusOK, code)
	require.True(t, res.Result)

	code = getJSON(t, srv, queryPath("subclass", map[string]string{
		"sub": "http://example.org/Animal",
		"sup": "http://example.org/Dog",
	}), &res)
	require.Equal(t, http.StatusOK, code)
	require.False(t, res.Result)

	code = getJSON(t, srv, queryPath("equivalent", map[string]string{
		"a": "http://example.org/Person",
		"b": "http://example.org/Human",
	}), &res)
	require.Equal(t, http.StatusOK, code)
	require.True(t, res.Result)

	code = getJSON(t, srv, queryPath("characteristic", map[string]string{
		"property": "http://example.org/partOf",
		"flag":     "transitive",
	}), &res)
	require.Equal(t, http.StatusOK, code)
	require.True(t, res.Result)

	code = getJSON(t, srv, queryPath("characteristic", map[string]string{
		"property": "http://example.org/partOf",
		"flag":     "symmetric",
	}), &res)
	require.Equal(t, http.StatusOK, code)
	require.False(t, res.Result)
}

func TestSparseMode(t *testing.T) {
	_, srv := serveTestAPI(t)

	var mat materializeResult
	code := postJSON(t, srv, "/api/v1/materialize?mode=sparse", &mat)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, mat.Derived)

	var errRes map[string]string
	code = postJSON(t, srv, "/api/v1/materialize?mode=warp", &errRes)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, errRes["error"], "warp")
}

func TestQueryParamValidation(t *testing.T) {
	_, srv := serveTestAPI(t)

	var errRes map[string]string
	code := getJSON(t, srv, "/api/v1/subclass?sub=http://example.org/Dog", &errRes)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, errRes["error"], "sup")

	code = getJSON(t, srv, queryPath("characteristic", map[string]string{
		"property": "http://example.org/partOf",
		"flag":     "bouncy",
	}), &errRes)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, errRes["error"], "bouncy")
}

func TestStats(t *testing.T) {
	s, srv := serveTestAPI(t)

	var st statsResult
	code := getJSON(t, srv, "/api/v1/stats", &st)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "dirty", st.State)
	require.EqualValues(t, 0, st.Generation)
	require.EqualValues(t, 32, st.Capacity)
	require.Equal(t, s.Namer().Len(), st.Names)

	var mat materializeResult
	postJSON(t, srv, "/api/v1/materialize", &mat)

	code = getJSON(t, srv, "/api/v1/stats", &st)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "materialized", st.State)
	require.EqualValues(t, 1, st.Generation)
	require.EqualValues(t, 1, st.Inferences)
}

func TestReadOnly(t *testing.T) {
	s, err := ontology.NewStore(8)
	require.NoError(t, err)
	defer s.Close()

	api := NewAPI(s)
	api.SetReadOnly(true)
	srv := httptest.NewServer(api)
	defer srv.Close()

	var errRes map[string]string
	code := postJSON(t, srv, "/api/v1/materialize", &errRes)
	require.Equal(t, http.StatusForbidden, code)
}

func TestHealth(t *testing.T) {
	_, srv := serveTestAPI(t)

	var res map[string]string
	code := getJSON(t, srv, "/health", &res)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", res["status"])
}
