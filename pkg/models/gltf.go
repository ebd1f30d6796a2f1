package models

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
)

// ErrNodeCycle is returned when a node is reachable from itself.
var ErrNodeCycle = errors.New("gltf node hierarchy has a cycle")

// GLTFLoader loads glTF/GLB files into a world as a tree of elements, one
// per node.
type GLTFLoader struct {
	// SmoothNormals computes averaged vertex normals for primitives that
	// carry none. Otherwise they are shaded with face normals.
	SmoothNormals bool

	// Textures disables texture decoding when false.
	Textures bool

	// MaxTextureSize scales decoded textures down so that neither side
	// exceeds it. Zero keeps them at full size.
	MaxTextureSize int

	dir      string
	textures map[int]scene.Texture
}

// NewGLTFLoader creates a new glTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		SmoothNormals: true,
		Textures:      true,
	}
}

// LoadGLB loads a glTF or GLB file into world with default options and
// returns the index of its root element.
func LoadGLB(world *scene.World, path string) (int, error) {
	return NewGLTFLoader().Load(world, path)
}

// Load opens a glTF or GLB file and adds it to world under a root element
// named after the file.
func (l *GLTFLoader) Load(world *scene.World, path string) (int, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return -1, fmt.Errorf("open gltf: %w", err)
	}
	l.dir = filepath.Dir(path)
	return l.AddDocument(world, doc, filepath.Base(path))
}

// AddDocument adds the default scene of doc to world under a new root
// element and returns its index. Each node becomes an element carrying the
// node's local transform; node children become sub-elements.
func (l *GLTFLoader) AddDocument(world *scene.World, doc *gltf.Document, name string) (int, error) {
	l.textures = make(map[int]scene.Texture)
	root := world.AddRoot(scene.NewElement(name))

	visiting := make(map[int]bool)
	for _, n := range rootNodes(doc) {
		if err := l.addNode(world, doc, root, n, visiting); err != nil {
			return root, err
		}
	}
	return root, nil
}

// rootNodes returns the nodes of the default scene, or every node without
// a parent when the document has no scenes.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}

	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (l *GLTFLoader) addNode(world *scene.World, doc *gltf.Document, parent, idx int, visiting map[int]bool) error {
	if idx < 0 || idx >= len(doc.Nodes) {
		return fmt.Errorf("node %d out of range", idx)
	}
	if visiting[idx] {
		return fmt.Errorf("node %d: %w", idx, ErrNodeCycle)
	}
	visiting[idx] = true
	defer delete(visiting, idx)

	node := doc.Nodes[idx]
	name := node.Name
	if name == "" {
		name = fmt.Sprintf("node%d", idx)
	}
	el := scene.NewElement(name)
	el.Transform = nodeTransform(node)

	self, err := world.AddChild(parent, el)
	if err != nil {
		return err
	}

	if node.Mesh != nil {
		if err := l.addMesh(world, doc, self, *node.Mesh); err != nil {
			return fmt.Errorf("node %q: %w", name, err)
		}
	}
	for _, c := range node.Children {
		if err := l.addNode(world, doc, self, c, visiting); err != nil {
			return err
		}
	}
	return nil
}

// nodeTransform maps a node's matrix, or its TRS properties, to a local
// transformation.
func nodeTransform(node *gltf.Node) scene.Transformation {
	t := scene.NewTransformation()
	if m := node.MatrixOrDefault(); m != gltf.DefaultMatrix {
		// glTF matrices are column-major.
		var rowMajor math3d.Mat4
		for r := range 4 {
			for c := range 4 {
				rowMajor[r*4+c] = m[c*4+r]
			}
		}
		t.Explicit = rowMajor
		t.HasExplicit = true
		return t
	}

	s := node.ScaleOrDefault()
	q := node.RotationOrDefault()
	tr := node.TranslationOrDefault()
	t.Scaling = math3d.V3(s[0], s[1], s[2])
	t.Rotation = math3d.FromQuaternion(q[0], q[1], q[2], q[3])
	t.Translation = math3d.V3(tr[0], tr[1], tr[2])
	return t
}

// addMesh puts a single-primitive mesh on the node element itself and
// gives every primitive of a larger mesh its own sub-element, since an
// element has one material.
func (l *GLTFLoader) addMesh(world *scene.World, doc *gltf.Document, nodeEl, meshIdx int) error {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", meshIdx)
	}
	m := doc.Meshes[meshIdx]

	var prims []*gltf.Primitive
	for _, p := range m.Primitives {
		// Skip non-triangle primitives (lines, points, etc)
		if p.Mode == gltf.PrimitiveTriangles {
			prims = append(prims, p)
		}
	}

	if len(prims) == 1 {
		if err := l.fillPrimitive(doc, world.Element(nodeEl), prims[0]); err != nil {
			return fmt.Errorf("mesh %q: %w", m.Name, err)
		}
		return nil
	}
	for i, p := range prims {
		el := scene.NewElement(fmt.Sprintf("%s/%d", m.Name, i))
		if err := l.fillPrimitive(doc, el, p); err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", m.Name, i, err)
		}
		if _, err := world.AddChild(nodeEl, el); err != nil {
			return err
		}
	}
	return nil
}

// fillPrimitive extracts the geometry and material of one primitive into el.
func (l *GLTFLoader) fillPrimitive(doc *gltf.Document, el *scene.Element, prim *gltf.Primitive) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("read normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("read uvs: %w", err)
		}
	}
	var colors [][4]uint8
	if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		if colors, err = modeler.ReadColor(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("read colors: %w", err)
		}
	}

	base := len(el.Vertices)
	for i, p := range positions {
		pos := math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))
		v := scene.NewVertex(pos.X, pos.Y, pos.Z)
		if i < len(normals) {
			n := math3d.V3(float64(normals[i][0]), float64(normals[i][1]), float64(normals[i][2]))
			if n.LenSq() > 0 {
				v = scene.NewVertexWithNormal(pos, n)
			}
		}
		if i < len(colors) {
			c := scene.RGB(colors[i][0], colors[i][1], colors[i][2])
			v.Color = &c
		}
		el.AddVertex(v)
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
	} else {
		// No indices, assume sequential triangles
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	var tex scene.Texture
	if prim.Material != nil {
		if tex, err = l.applyMaterial(doc, el, *prim.Material); err != nil {
			return err
		}
	}

	n := len(el.Vertices)
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := base+int(indices[i]), base+int(indices[i+1]), base+int(indices[i+2])
		if a >= n || b >= n || c >= n {
			return fmt.Errorf("index out of range at triangle %d", i/3)
		}
		tri := el.AddTriangle(el.Vertices[a], el.Vertices[b], el.Vertices[c])
		if tex != nil && len(uvs) > 0 {
			tri.Texture = scene.NewTextureBinding(tex,
				uvAt(uvs, a-base), uvAt(uvs, b-base), uvAt(uvs, c-base))
		}
	}

	if len(normals) == 0 && l.SmoothNormals {
		CalculateSmoothNormals(el)
	}
	return nil
}

func uvAt(uvs [][2]float32, i int) math3d.Vec2 {
	if i >= len(uvs) {
		return math3d.Vec2{}
	}
	return math3d.V2(float64(uvs[i][0]), float64(uvs[i][1]))
}

// applyMaterial sets el's material from the glTF material and returns its
// base color texture, if any.
func (l *GLTFLoader) applyMaterial(doc *gltf.Document, el *scene.Element, idx int) (scene.Texture, error) {
	if idx < 0 || idx >= len(doc.Materials) {
		return nil, fmt.Errorf("material %d out of range", idx)
	}
	gm := doc.Materials[idx]
	el.Closed = !gm.DoubleSided

	mat := scene.DefaultMaterial
	pbr := gm.PBRMetallicRoughness
	if pbr == nil {
		el.Material = &mat
		return nil, nil
	}

	f := pbr.BaseColorFactorOrDefault()
	mat.Color = scene.VecColor(math3d.V3(f[0], f[1], f[2]))
	mat.SpecularExponent = specularExponent(pbr.RoughnessFactorOrDefault())
	el.Material = &mat

	if pbr.BaseColorTexture == nil || !l.Textures {
		return nil, nil
	}
	return l.texture(doc, pbr.BaseColorTexture.Index)
}

// specularExponent converts a roughness factor to a Phong exponent using
// the Beckmann relation n = 2/m^2 - 2 with m = roughness^2.
func specularExponent(roughness float64) float64 {
	if roughness >= 1 {
		return 0
	}
	m := math.Max(roughness*roughness, 0.05)
	return math.Min(2/(m*m)-2, 256)
}

// texture decodes and caches the image behind a glTF texture.
func (l *GLTFLoader) texture(doc *gltf.Document, idx int) (scene.Texture, error) {
	if tex, ok := l.textures[idx]; ok {
		return tex, nil
	}
	if idx < 0 || idx >= len(doc.Textures) || doc.Textures[idx].Source == nil {
		return nil, fmt.Errorf("texture %d has no image", idx)
	}
	data, err := l.imageData(doc, *doc.Textures[idx].Source)
	if err != nil {
		return nil, fmt.Errorf("texture %d: %w", idx, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode texture %d: %w", idx, err)
	}
	tex := render.TextureFromImage(img).Limit(l.MaxTextureSize)
	l.textures[idx] = tex
	return tex, nil
}

// imageData returns the encoded bytes of an image stored in a buffer view,
// a data URI or a file next to the document.
func (l *GLTFLoader) imageData(doc *gltf.Document, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(doc.Images) {
		return nil, fmt.Errorf("image %d out of range", idx)
	}
	img := doc.Images[idx]
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf.Data) {
			return nil, fmt.Errorf("image %d: buffer view exceeds buffer", idx)
		}
		return buf.Data[bv.ByteOffset:end], nil
	case img.IsEmbeddedResource():
		return img.MarshalData()
	case img.URI != "":
		return os.ReadFile(filepath.Join(l.dir, img.URI))
	}
	return nil, fmt.Errorf("image %d has no data", idx)
}
