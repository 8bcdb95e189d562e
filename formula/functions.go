package formula

import (
	"math"
	"strconv"
	"strings"
)

// builtins is the fixed function library. Each function receives
// already-evaluated arguments: scalars, or []any for range arguments.
var builtins = map[string]func(args []any) any{
	"SUM": func(args []any) any {
		sum := 0.0
		for _, n := range extractNumbers(args) {
			sum += n
		}
		return sum
	},
	"AVERAGE": func(args []any) any {
		nums := extractNumbers(args)
		if len(nums) == 0 {
			return float64(0)
		}
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		return sum / float64(len(nums))
	},
	"COUNT": func(args []any) any {
		return float64(len(extractNumbers(args)))
	},
	"MIN": func(args []any) any {
		nums := extractNumbers(args)
		if len(nums) == 0 {
			return float64(0)
		}
		min := nums[0]
		for _, n := range nums[1:] {
			if n < min {
				min = n
			}
		}
		return min
	},
	"MAX": func(args []any) any {
		nums := extractNumbers(args)
		if len(nums) == 0 {
			return float64(0)
		}
		max := nums[0]
		for _, n := range nums[1:] {
			if n > max {
				max = n
			}
		}
		return max
	},
	"IF": func(args []any) any {
		cond := arg(args, 0)
		trueVal := any(true)
		falseVal := any(false)
		if len(args) > 1 {
			trueVal = args[1]
		}
		if len(args) > 2 {
			falseVal = args[2]
		}
		if truthy(cond) {
			return trueVal
		}
		return falseVal
	},
	"CONCAT": func(args []any) any {
		var sb strings.Builder
		for _, a := range args {
			sb.WriteString(scalarString(a))
		}
		return sb.String()
	},
	"UPPER": func(args []any) any {
		return strings.ToUpper(scalarString(first(arg(args, 0))))
	},
	"LOWER": func(args []any) any {
		return strings.ToLower(scalarString(first(arg(args, 0))))
	},
	"LEN": func(args []any) any {
		return float64(len(scalarString(first(arg(args, 0)))))
	},
	"ROUND": func(args []any) any {
		num := numArg(args, 0)
		digits := numArg(args, 1)
		scale := math.Pow(10, digits)
		return math.Round(num*scale) / scale
	},
	"ABS": func(args []any) any {
		return math.Abs(numArg(args, 0))
	},
	"SQRT": func(args []any) any {
		return math.Sqrt(numArg(args, 0))
	},
	"POWER": func(args []any) any {
		return math.Pow(numArg(args, 0), numArg(args, 1))
	},
}

// extractNumbers flattens arguments into the numbers they contain.
// Strings that parse as numbers count; other text is ignored so that
// numeric aggregations skip labels instead of failing.
func extractNumbers(args []any) []float64 {
	var nums []float64
	for _, a := range args {
		switch t := a.(type) {
		case float64:
			nums = append(nums, t)
		case string:
			if n, err := strconv.ParseFloat(t, 64); err == nil {
				nums = append(nums, n)
			}
		case []any:
			nums = append(nums, extractNumbers(t)...)
		}
	}
	return nums
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// numArg returns argument i when it is a number, else 0.
func numArg(args []any, i int) float64 {
	if n, ok := arg(args, i).(float64); ok {
		return n
	}
	return 0
}

// first unwraps a range argument to its first element.
func first(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

// truthy mirrors the display layer's condition semantics: zero, empty
// string, false, and empty are falsy; everything else is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return true
	}
	return false
}
