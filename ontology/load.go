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

package ontology

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"

	"github.com/tboxgraph/tbox/clog"
)

// Load reads an ontology from the given path or URL into the store. Gzip and
// bzip2 payloads are decompressed transparently. The format is picked by typ
// ("cquad", "nquad" or a registered quad format name); when typ is empty it
// is guessed from the file extension, falling back to N-Quads.
func (s *Store) Load(path, typ string) error {
	var r io.Reader

	if path == "" {
		return nil
	}
	u, err := url.Parse(path)
	if err != nil || u.Scheme == "file" || u.Scheme == "" {
		// Don't alter relative URL path or non-URL path parameter.
		if u.Scheme != "" && err == nil {
			// Recovery heuristic for mistyping "file://path/to/file".
			path = filepath.Join(u.Host, u.Path)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("could not open file %q: %v", path, err)
		}
		defer f.Close()
		r = f
	} else {
		res, err := http.Get(path)
		if err != nil {
			return fmt.Errorf("could not get resource <%s>: %v", u, err)
		}
		defer res.Body.Close()
		r = res.Body
	}

	r, err = decompress(r)
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	var qr quad.Reader
	switch typ {
	case "cquad":
		qr = nquads.NewReader(r, false)
	case "nquad":
		qr = nquads.NewReader(r, true)
	case "":
		if f := quad.FormatByExt(filepath.Ext(path)); f != nil && f.Reader != nil {
			qr = f.Reader(r)
		} else {
			qr = nquads.NewReader(r, false)
		}
	default:
		rf := quad.FormatByName(typ)
		if rf == nil {
			return fmt.Errorf("unknown quad format %q", typ)
		} else if rf.Reader == nil {
			return fmt.Errorf("decoding of %q is not supported", typ)
		}
		qr = rf.Reader(r)
	}
	if c, ok := qr.(io.Closer); ok {
		defer c.Close()
	}

	start := time.Now()
	n, err := s.ReadFrom(qr)
	if err != nil {
		return err
	}
	if clog.V(1) {
		clog.Infof("loaded %d quads from %q in %v (%d skipped)", n, path, time.Since(start), s.Skipped())
	}
	return nil
}

const (
	gzipMagic  = "\x1f\x8b"
	b2zipMagic = "BZh"
)

// decompress detects the payload type between bzip, gzip, or a raw quad
// file.
func decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	buf, err := br.Peek(3)
	if err != nil {
		return nil, err
	}
	switch {
	case bytes.Equal(buf[:2], []byte(gzipMagic)):
		return gzip.NewReader(br)
	case bytes.Equal(buf[:3], []byte(b2zipMagic)):
		return bzip2.NewReader(br), nil
	default:
		return br, nil
	}
}
