package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-version"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/toyz/docblock/pkg/annotation"
)

// ErrInvalidCachedData is returned when persisted cache data can not be decoded.
var ErrInvalidCachedData = errors.New("cached annotation data is not valid")

const formatVersion = "1.2.0"

var supportedFormats = mustConstraint(">= 1.0, < 2.0")

func mustConstraint(s string) version.Constraints {
	c, err := version.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// envelope is the persisted form of the whole cache. Stamps fingerprint the
// doc comment each entry was parsed from; files written before 1.2 carry
// none, so all their entries read as stale.
type envelope struct {
	Format   string            `msgpack:"format"`
	Checksum uint64            `msgpack:"checksum"`
	Entries  map[string][]byte `msgpack:"entries"`
	Stamps   map[string]uint64 `msgpack:"stamps,omitempty"`
}

type collectionRecord struct {
	Target      string             `msgpack:"target"`
	Annotations []annotationRecord `msgpack:"annotations"`
}

type annotationRecord struct {
	Name   string   `msgpack:"name"`
	Type   string   `msgpack:"type"`
	Target string   `msgpack:"target"`
	Keys   []string `msgpack:"keys"`
	Values []string `msgpack:"values"`
}

func encodeCollection(c *annotation.Collection) ([]byte, error) {
	rec := collectionRecord{Target: c.Target()}
	for a := range c.All() {
		r := annotationRecord{Name: a.Name(), Type: a.Type(), Target: a.Target()}
		for k, v := range a.Values().All() {
			r.Keys = append(r.Keys, k)
			r.Values = append(r.Values, v)
		}
		rec.Annotations = append(rec.Annotations, r)
	}
	return msgpack.Marshal(&rec)
}

func decodeCollection(data []byte) (*annotation.Collection, error) {
	var rec collectionRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCachedData, err)
	}
	c := annotation.NewCollection(rec.Target)
	for _, r := range rec.Annotations {
		if len(r.Keys) != len(r.Values) {
			return nil, fmt.Errorf("%w: annotation %s has %d keys and %d values", ErrInvalidCachedData, r.Name, len(r.Keys), len(r.Values))
		}
		var values annotation.Values
		for i, k := range r.Keys {
			values.Set(k, r.Values[i])
		}
		c.Add(annotation.New(r.Name, r.Target, values, r.Type))
	}
	return c, nil
}

func encodeEnvelope(entries map[string][]byte, stamps map[string]uint64) ([]byte, error) {
	return msgpack.Marshal(&envelope{
		Format:   formatVersion,
		Checksum: checksum(entries, stamps),
		Entries:  entries,
		Stamps:   stamps,
	})
}

// decodeEnvelope accepts empty input as an empty cache.
func decodeEnvelope(data []byte) (map[string][]byte, map[string]uint64, error) {
	if len(data) == 0 {
		return map[string][]byte{}, map[string]uint64{}, nil
	}

	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCachedData, err)
	}
	v, err := version.NewVersion(env.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: format %q: %v", ErrInvalidCachedData, env.Format, err)
	}
	if !supportedFormats.Check(v) {
		return nil, nil, fmt.Errorf("%w: unsupported format %s", ErrInvalidCachedData, v)
	}
	if env.Entries == nil {
		env.Entries = map[string][]byte{}
	}
	if env.Stamps == nil {
		env.Stamps = map[string]uint64{}
	}
	if sum := checksum(env.Entries, env.Stamps); sum != env.Checksum {
		return nil, nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidCachedData)
	}
	return env.Entries, env.Stamps, nil
}

func checksum(entries map[string][]byte, stamps map[string]uint64) uint64 {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := xxhash.New()
	var buf [8]byte
	for _, k := range keys {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(k)))
		_, _ = h.Write(buf[:])
		_, _ = h.WriteString(k)
		binary.LittleEndian.PutUint64(buf[:], uint64(len(entries[k])))
		_, _ = h.Write(buf[:])
		_, _ = h.Write(entries[k])
		if stamp, ok := stamps[k]; ok {
			binary.LittleEndian.PutUint64(buf[:], stamp)
			_, _ = h.Write(buf[:])
		}
	}
	return h.Sum64()
}
