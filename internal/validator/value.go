package validator

import (
	"sort"

	"github.com/kaptinlin/jsonls/internal/cst"
)

// nodeValue decodes a CST node into a plain Go value (string, float64,
// bool, nil, []interface{}, map[string]interface{}) for enum/const/
// uniqueItems comparison. Object key order doesn't matter here since
// structuralEqual compares objects by key set and recursive value, not by
// order.
func nodeValue(node *cst.Node, src []byte) interface{} {
	switch cst.Kind(node) {
	case cst.KindObject:
		out := map[string]interface{}{}
		for _, pair := range cst.ObjectPairs(node) {
			key, ok := cst.PairKey(pair, src)
			if !ok {
				continue
			}
			out[key] = nodeValue(cst.PairValue(pair), src)
		}
		return out
	case cst.KindArray:
		var out []interface{}
		for _, item := range cst.ArrayItems(node) {
			out = append(out, nodeValue(item, src))
		}
		return out
	case cst.KindString:
		s, _ := cst.StringContent(node, src)
		return s
	case cst.KindNumber:
		f, _ := parseNumber(node, src)
		return f
	case cst.KindTrue:
		return true
	case cst.KindFalse:
		return false
	case cst.KindNull:
		return nil
	default:
		return nil
	}
}

// structuralEqual implements JSON structural equality: same type, same
// value, objects compared by key set (order independent), arrays compared
// element-wise in order. Numbers compare as float64.
func structuralEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !structuralEqual(v, bvv) {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !structuralEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case float64:
		bv, ok := toFloat(b)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}

// sortedKeys returns a map's keys in sorted order. Nothing in the package
// calls it; structuralEqual compares objects without ordering keys.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
