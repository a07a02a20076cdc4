package vulfield_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaeryn-uk/vulfield"
	"github.com/vaeryn-uk/vulfield/internal/sample"
)

func TestTypeScriptPolymorphic(t *testing.T) {
	r := sampleRegistry(t)
	d, err := vulfield.DescribeType[sample.TreeNode](r)
	require.NoError(t, err)

	want := `export interface TreeNode {
	type: NodeType;
	name?: string;
}

export enum NodeType {
	Leaf = "Leaf",
	Branch = "Branch",
}

export interface Leaf extends TreeNode {
	type: NodeType.Leaf;
	value?: number;
}

export interface Branch extends TreeNode {
	type: NodeType.Branch;
	children?: TreeNode[];
}

export function isLeaf(v: TreeNode): v is Leaf {
	return v.type === NodeType.Leaf;
}

export function isBranch(v: TreeNode): v is Branch {
	return v.type === NodeType.Branch;
}

`
	require.Equal(t, want, d.TypeScript(vulfield.TypeScriptOptions{TypeGuards: true}))
}

func TestTypeScriptReferences(t *testing.T) {
	r := sampleRegistry(t)
	d, err := vulfield.DescribeType[sample.Unit](r)
	require.NoError(t, err)

	want := `// A string reference to an existing object of the given type
// @ts-ignore
export type Ref<T> = string;

export interface Unit {
	id?: string;
	name?: string;
	speed?: Measure;
	weapon?: (Weapon | Ref<Weapon>);
	ally?: (Unit | Ref<Unit>);
}

export type Measure = number;

export interface Weapon {
	id?: string;
	damage?: number;
}

`
	require.Equal(t, want, d.TypeScript(vulfield.TypeScriptOptions{}))

	extracted := d.TypeScript(vulfield.TypeScriptOptions{ExtractReferences: true})
	require.Contains(t, extracted, "export type Refs = Record<Ref<any>, any>;\n")
	require.Contains(t, extracted, "\tweapon?: Ref<Weapon>;\n")
}

func TestTypeScriptRegistry(t *testing.T) {
	r := sampleRegistry(t)
	out, err := r.TypeScript(vulfield.TypeScriptOptions{})
	require.NoError(t, err)

	for _, decl := range []string{
		"export type Color = string;\n",
		"export interface Flat {\n\tname: string;\n\tcount: number;\n",
		"\ttags?: string[];\n",
		"\tscores?: Record<string, number>;\n",
		"\tnote?: string;\n",
		"\ttexture?: string | Texture;\n",
		"\tinner?: Inner;\n",
		"\titems?: Inner[];\n",
	} {
		require.Contains(t, out, decl)
	}
}
