package catalog

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/pricewise-in/pricewise/internal/domain"
)

// buildHashFields converts an embedding record into a flat map[string]string for HSET.
func buildHashFields(rec domain.EmbeddingRecord) map[string]string {
	return map[string]string{
		"title":    rec.Title,
		"price":    strconv.Itoa(rec.PriceINR),
		"seller":   rec.Seller,
		"__vector": vectorToBytes(rec.Vector),
	}
}

// parseHashFields converts a flat hash map back into an embedding record.
func parseHashFields(id string, m map[string]string) domain.EmbeddingRecord {
	price, _ := strconv.Atoi(m["price"])
	return domain.EmbeddingRecord{
		ProductID: id,
		Title:     m["title"],
		PriceINR:  price,
		Seller:    m["seller"],
		Vector:    bytesToVector(m["__vector"]),
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
