package path

import (
	"testing"

	"github.com/ikmak/mongo-go-driver/bson"
	"github.com/stretchr/testify/require"
)

func keys(t *testing.T, elems []*bson.Element) []string {
	var out []string
	for _, e := range elems {
		out = append(out, e.Key())
	}
	return out
}

func TestSelectPlainName(t *testing.T) {
	doc := bson.NewDocument(bson.EC.String("name", "widget"), bson.EC.Int32("price", 10))

	got, err := Select(doc, "name")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "widget", got[0].Value().StringValue())
}

func TestSelectMissingNameYieldsNoMatch(t *testing.T) {
	doc := bson.NewDocument(bson.EC.String("name", "widget"))

	got, err := Select(doc, "nope")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSelectDottedNested(t *testing.T) {
	inner := bson.NewDocument(bson.EC.Int32("qty", 3))
	doc := bson.NewDocument(bson.EC.SubDocument("meta", inner))

	got, err := Select(doc, "meta.qty")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.EqualValues(t, 3, got[0].Value().Int32())
}

func TestSelectWildcardImmediateChildren(t *testing.T) {
	doc := bson.NewDocument(bson.EC.Int32("a", 1), bson.EC.Int32("b", 2), bson.EC.Int32("c", 3))

	got, err := Select(doc, "*")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b", "c"}, keys(t, got))
}

func TestSelectRecursiveDescent(t *testing.T) {
	leaf1 := bson.NewDocument(bson.EC.Int32("qty", 1))
	leaf2 := bson.NewDocument(bson.EC.Int32("qty", 2))
	middle := bson.NewDocument(bson.EC.SubDocument("x", leaf1), bson.EC.SubDocument("y", leaf2))
	doc := bson.NewDocument(bson.EC.SubDocument("meta", middle), bson.EC.Int32("qty", 0))

	got, err := Select(doc, "..qty")
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestSelectRecursiveDescentIsPreOrder(t *testing.T) {
	inner := bson.NewDocument(bson.EC.Int32("x", 2))
	doc := bson.NewDocument(bson.EC.Int32("x", 1), bson.EC.SubDocument("a", inner))

	got, err := Select(doc, "..x")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.EqualValues(t, 1, got[0].Value().Int32())
	require.EqualValues(t, 2, got[1].Value().Int32())
}

func TestSelectArrayIndex(t *testing.T) {
	arr := bson.NewArray(bson.VC.String("a"), bson.VC.String("b"), bson.VC.String("c"))
	doc := bson.NewDocument(bson.EC.Array("tags", arr))

	got, err := Select(doc, "tags[1]")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "b", got[0].Value().StringValue())
}

func TestSelectSubscriptListPreservesOrderAndDedups(t *testing.T) {
	doc := bson.NewDocument(bson.EC.Int32("a", 1), bson.EC.Int32("b", 2), bson.EC.Int32("c", 3))

	got, err := Select(doc, "['c','a','a']")
	require.NoError(t, err)
	require.Equal(t, []string{"c", "a"}, keys(t, got))
}

func TestSelectComputedSubscript(t *testing.T) {
	arr := bson.NewArray(bson.VC.String("a"), bson.VC.String("b"), bson.VC.String("c"))
	doc := bson.NewDocument(bson.EC.Array("tags", arr), bson.EC.Int32("idx", 2))

	got, err := Select(doc, "tags[(1+1)]")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "c", got[0].Value().StringValue())
}

func TestSelectFilterSubscript(t *testing.T) {
	item1 := bson.NewDocument(bson.EC.String("name", "cheap"), bson.EC.Int32("price", 5))
	item2 := bson.NewDocument(bson.EC.String("name", "pricey"), bson.EC.Int32("price", 50))
	items := bson.NewArray(bson.VC.Document(item1), bson.VC.Document(item2))
	doc := bson.NewDocument(bson.EC.Array("items", items))

	got, err := Select(doc, "items[?(@.price < 10)].name")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "cheap", got[0].Value().StringValue())
}

func TestSelectDivisionByZeroPropagatesError(t *testing.T) {
	doc := bson.NewDocument(bson.EC.Int32("a", 1))

	_, err := Select(doc, "[(1/0)]")
	require.Error(t, err)
}
