package insn

import (
	"fmt"
	"strconv"
	"strings"
)

// Format returns a one-line rendering of n. Labels print as label#N.
func Format(n Insn) string {
	if n == nil {
		return "<nil>"
	}
	return format(n, Label.String)
}

// Disassemble returns a listing of l, one node per line. Labels are named
// L0, L1, ... in order of first appearance so that listings of structurally
// equal lists compare equal.
func Disassemble(l *List) string {
	names := make(map[Label]string)
	name := func(lbl Label) string {
		if s, ok := names[lbl]; ok {
			return s
		}
		s := "L" + strconv.Itoa(len(names))
		names[lbl] = s
		return s
	}

	var sb strings.Builder
	for n := l.First(); n != nil; n = n.Next() {
		if n.Kind() == KindLabel {
			sb.WriteString(format(n, name))
			sb.WriteString(":\n")
			continue
		}
		sb.WriteString("    ")
		sb.WriteString(format(n, name))
		sb.WriteString("\n")
	}
	return sb.String()
}

func format(n Insn, name func(Label) string) string {
	switch v := n.(type) {
	case *Plain:
		return v.op.String()
	case *Int:
		return fmt.Sprintf("%s %d", v.op, v.Operand)
	case *Var:
		return fmt.Sprintf("%s %d", v.op, v.Var)
	case *TypeInsn:
		return fmt.Sprintf("%s %s", v.op, v.Desc)
	case *Field:
		return fmt.Sprintf("%s %s.%s %s", v.op, v.Owner, v.Name, v.Desc)
	case *Method:
		s := fmt.Sprintf("%s %s.%s%s", v.op, v.Owner, v.Name, v.Desc)
		if v.Itf && v.op != OpInvokeinterface {
			s += " itf"
		}
		return s
	case *InvokeDynamic:
		return fmt.Sprintf("%s %s%s [%s]", v.op, v.Name, v.Desc, v.Bootstrap)
	case *Jump:
		return fmt.Sprintf("%s %s", v.op, name(v.Label))
	case *Mark:
		return name(v.Label)
	case *Ldc:
		if s, ok := v.Cst.(string); ok {
			return fmt.Sprintf("%s %q", v.op, s)
		}
		return fmt.Sprintf("%s %s", v.op, v.Text())
	case *Iinc:
		return fmt.Sprintf("%s %d %d", v.op, v.Var, v.Incr)
	case *TableSwitch:
		parts := make([]string, len(v.Cases))
		for i, c := range v.Cases {
			parts[i] = fmt.Sprintf("%d: %s", int(v.Min)+i, name(c))
		}
		return fmt.Sprintf("%s {%s; default: %s}", v.op, strings.Join(parts, ", "), name(v.Default))
	case *LookupSwitch:
		parts := make([]string, len(v.Cases))
		for i, c := range v.Cases {
			var key int32
			if i < len(v.Keys) {
				key = v.Keys[i]
			}
			parts[i] = fmt.Sprintf("%d: %s", key, name(c))
		}
		return fmt.Sprintf("%s {%s; default: %s}", v.op, strings.Join(parts, ", "), name(v.Default))
	case *MultiANewArray:
		return fmt.Sprintf("%s %s %d", v.op, v.Desc, v.Dims)
	case *Frame:
		return fmt.Sprintf("frame %d locals=%s stack=%s",
			v.Type, frameValues(v.Local, name), frameValues(v.Stack, name))
	case *Line:
		return fmt.Sprintf("line %d %s", v.Line, name(v.Start))
	default:
		return n.Opcode().String()
	}
}

func frameValues(vals []FrameValue, name func(Label) string) string {
	parts := make([]string, len(vals))
	for i, fv := range vals {
		if fv.New != 0 {
			parts[i] = "uninitialized(" + name(fv.New) + ")"
		} else {
			parts[i] = fv.Desc
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
