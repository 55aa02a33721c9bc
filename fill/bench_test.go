package fill

import (
	"context"
	"io"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/hupe1980/regionfill/layout"
	"github.com/hupe1980/regionfill/testutil"
)

func BenchmarkWriteRegion(b *testing.B) {
	for _, size := range []int{512, DefaultBufferSize, 64 * 1024} {
		b.Run(byteSize(size), func(b *testing.B) {
			const length = 1 << 20
			b.SetBytes(length)
			for b.Loop() {
				if _, err := WriteRegion(context.Background(), io.Discard, length, 7, size); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkOrchestrator_Fill(b *testing.B) {
	for _, regions := range []int64{1, 4, 16} {
		b.Run(byteSize(int(regions))+"-regions", func(b *testing.B) {
			l := testutil.Partition(b, 16<<20, regions)
			o, err := New(filepath.Join(b.TempDir(), "bench.bin"))
			if err != nil {
				b.Fatal(err)
			}

			b.SetBytes(l.TotalLength)
			for b.Loop() {
				rep, err := o.Fill(context.Background(), l, layout.Forward)
				if err != nil {
					b.Fatal(err)
				}
				if !rep.OK() {
					b.Fatal(rep.Err())
				}
			}
		})
	}
}

func byteSize(n int) string {
	if n >= 1024 && n%1024 == 0 {
		return strconv.Itoa(n/1024) + "K"
	}
	return strconv.Itoa(n)
}
