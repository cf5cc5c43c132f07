package dataset

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ReadFvecs reads vectors in FVECS format.
//
// For each vector:
//   - 4 bytes: dimension (int32, little-endian)
//   - dimension * 4 bytes: float32 values (little-endian)
//
// All vectors must have the same dimension.
func ReadFvecs(r io.Reader) ([][]float32, error) {
	var vectors [][]float32
	err := readVecs(r, func(dim int32, br io.Reader) error {
		vec := make([]float32, dim)
		if err := binary.Read(br, binary.LittleEndian, vec); err != nil {
			return err
		}
		vectors = append(vectors, vec)
		return nil
	})
	return vectors, err
}

// ReadIvecs reads integer vectors in IVECS format, the layout of FVECS with
// int32 values. Ground truth files list neighbor indices this way.
func ReadIvecs(r io.Reader) ([][]int32, error) {
	var vectors [][]int32
	err := readVecs(r, func(dim int32, br io.Reader) error {
		vec := make([]int32, dim)
		if err := binary.Read(br, binary.LittleEndian, vec); err != nil {
			return err
		}
		vectors = append(vectors, vec)
		return nil
	})
	return vectors, err
}

func readVecs(r io.Reader, readRow func(dim int32, br io.Reader) error) error {
	br := bufio.NewReader(r)
	expectedDim := int32(-1)

	for row := 0; ; row++ {
		var dim int32
		err := binary.Read(br, binary.LittleEndian, &dim)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("row %d: read dimension: %w", row, err)
		}

		if dim < 0 {
			return fmt.Errorf("row %d: negative dimension %d", row, dim)
		}
		if expectedDim == -1 {
			expectedDim = dim
		} else if dim != expectedDim {
			return fmt.Errorf("row %d: inconsistent dimensions: expected %d, got %d", row, expectedDim, dim)
		}

		if err := readRow(dim, br); err != nil {
			return fmt.Errorf("row %d: read values: %w", row, err)
		}
	}
}

// WriteFvecs writes vectors in FVECS format.
func WriteFvecs(w io.Writer, vectors [][]float32) error {
	bw := bufio.NewWriter(w)
	for _, vec := range vectors {
		if err := binary.Write(bw, binary.LittleEndian, int32(len(vec))); err != nil {
			return fmt.Errorf("write dimension: %w", err)
		}
		if err := binary.Write(bw, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("write values: %w", err)
		}
	}
	return bw.Flush()
}

// WriteIvecs writes integer vectors in IVECS format.
func WriteIvecs(w io.Writer, vectors [][]int32) error {
	bw := bufio.NewWriter(w)
	for _, vec := range vectors {
		if err := binary.Write(bw, binary.LittleEndian, int32(len(vec))); err != nil {
			return fmt.Errorf("write dimension: %w", err)
		}
		if err := binary.Write(bw, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("write values: %w", err)
		}
	}
	return bw.Flush()
}
