// Package meshio reads and writes triangle meshes for the remesh host tools.
package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

const stlTriangleSize = 50

var (
	ErrEmptyModel = errors.New("meshio: empty triangle slice")
	// ErrNormalMismatch is returned alongside the triangles when stored normals
	// disagree with vertex winding. Models are often fine regardless.
	ErrNormalMismatch = errors.New("meshio: stored normal not approximately equal to normal calculated from vertices")
)

// WriteSTL writes triangles to w in binary STL format.
func WriteSTL(w io.Writer, model []r3.Triangle) error {
	if len(model) == 0 {
		return ErrEmptyModel
	}
	bw := bufio.NewWriter(w)
	header := stlHeader{Count: uint32(len(model))}
	if err := binary.Write(bw, binary.LittleEndian, &header); err != nil {
		return err
	}
	var (
		d stlTriangle
		b [stlTriangleSize]byte
	)
	for _, tri := range model {
		d.Normal = to3F32(r3.Unit(r3.Cross(r3.Sub(tri[1], tri[0]), r3.Sub(tri[2], tri[0]))))
		if bad3F32(d.Normal) {
			d.Normal = [3]float32{}
		}
		d.Vertex1 = to3F32(tri[0])
		d.Vertex2 = to3F32(tri[1])
		d.Vertex3 = to3F32(tri[2])
		d.put(b[:])
		if _, err := bw.Write(b[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteASCIISTL writes triangles to w in ASCII STL format.
func WriteASCIISTL(w io.Writer, name string, model []r3.Triangle) error {
	if len(model) == 0 {
		return ErrEmptyModel
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", name)
	for _, tri := range model {
		n := r3.Unit(r3.Cross(r3.Sub(tri[1], tri[0]), r3.Sub(tri[2], tri[0])))
		if math.IsNaN(n.X) {
			n = r3.Vec{}
		}
		fmt.Fprintf(bw, "facet normal %g %g %g\nouter loop\n", n.X, n.Y, n.Z)
		for _, v := range tri {
			fmt.Fprintf(bw, "vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		bw.WriteString("endloop\nendfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}

// ReadSTL reads a binary or ASCII STL model. A non-nil error wrapping
// ErrNormalMismatch is returned together with the triangles read.
func ReadSTL(r io.Reader) ([]r3.Triangle, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(512)
	if isASCII(head) {
		return readASCIISTL(br)
	}
	return readBinarySTL(br)
}

// isASCII detects ASCII STL. Binary headers may also start with "solid" so
// the peeked bytes must contain a facet keyword and be printable.
func isASCII(head []byte) bool {
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("solid")) {
		return false
	}
	if !bytes.Contains(head, []byte("facet")) && !bytes.Contains(head, []byte("endsolid")) {
		return false
	}
	for _, c := range head {
		if c == 0 || c > 127 {
			return false
		}
	}
	return true
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

func readBinarySTL(r io.Reader) (output []r3.Triangle, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("meshio: encountered EOF while reading STL header")
		}
		return nil, fmt.Errorf("meshio: STL header read failed: %w", err)
	}
	if header.Count == 0 {
		return nil, errors.New("meshio: STL header indicates 0 triangles present")
	}
	var (
		buf            [stlTriangleSize]byte
		d              stlTriangle
		i              int
		normMismatches int
	)
	defer func() {
		if readErr != nil && !errors.Is(readErr, ErrNormalMismatch) {
			readErr = fmt.Errorf("meshio: %d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	output = make([]r3.Triangle, 0, min(int(header.Count), 1<<20))
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if !errors.Is(err, ErrNormalMismatch) {
				return nil, err
			}
			normMismatches++
			readErr = err
		}
		output = append(output, d.toTriangle())
	}
	if normMismatches > 0 {
		readErr = fmt.Errorf("%w (%d triangles)", ErrNormalMismatch, normMismatches)
	}
	return output, readErr
}

func readASCIISTL(r io.Reader) ([]r3.Triangle, error) {
	var (
		output []r3.Triangle
		tri    r3.Triangle
		nv     int
		line   int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "vertex":
			if len(fields) != 4 || nv == 3 {
				return nil, fmt.Errorf("meshio: line %d: malformed vertex", line)
			}
			var f [3]float64
			for j := range f {
				v, err := strconv.ParseFloat(fields[j+1], 64)
				if err != nil {
					return nil, fmt.Errorf("meshio: line %d: %w", line, err)
				}
				f[j] = v
			}
			tri[nv] = r3.Vec{X: f[0], Y: f[1], Z: f[2]}
			nv++
		case "endfacet":
			if nv != 3 {
				return nil, fmt.Errorf("meshio: line %d: facet with %d vertices", line, nv)
			}
			if bad3F32(to3F32(tri[0])) || bad3F32(to3F32(tri[1])) || bad3F32(to3F32(tri[2])) {
				return nil, fmt.Errorf("meshio: line %d: inf/NaN STL triangle vertex", line)
			}
			output = append(output, tri)
			nv = 0
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(output) == 0 {
		return nil, errors.New("meshio: ASCII STL contains no facets")
	}
	return output, nil
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func (t stlTriangle) validate() error {
	const normTol = 5e-2
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if t.Normal == [3]float32{} {
		// Writers commonly leave normals unset.
		return nil
	}
	calc := t.normalFromVertices()
	if bad3F32(calc) {
		// Degenerate, left for welding to discard.
		return nil
	}
	neg := [3]float32{-calc[0], -calc[1], -calc[2]}
	if !equalWithin3F32(calc, t.Normal, normTol) && !equalWithin3F32(neg, t.Normal, normTol) {
		return ErrNormalMismatch
	}
	return nil
}

func (t stlTriangle) normalFromVertices() [3]float32 {
	v1 := r3.Scale(10, r3From3F32(t.Vertex1))
	v2 := r3.Scale(10, r3From3F32(t.Vertex2))
	v3 := r3.Scale(10, r3From3F32(t.Vertex3))
	return to3F32(r3.Unit(r3.Cross(r3.Sub(v2, v1), r3.Sub(v3, v1))))
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func to3F32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func (t stlTriangle) toTriangle() r3.Triangle {
	return r3.Triangle{r3From3F32(t.Vertex1), r3From3F32(t.Vertex2), r3From3F32(t.Vertex3)}
}
