package credential

import (
	"fmt"
	"reflect"
)

// AcceptExternal validates a bring-your-own credential supplied by the
// caller. The candidate must satisfy the Token capability set and must
// originate from a Google authorization host; a candidate wrapped inside a
// RequestConfig is unwrapped first. On success the identical object is
// returned, never a copy.
//
// A bare string, a nil, or any other shape lacking the capability set
// fails with InvalidTokenTypeError naming the shape. A structurally valid
// token from a foreign authorization host fails with WrongEndpointError.
func AcceptExternal(candidate interface{}) (Token, error) {
	switch c := candidate.(type) {
	case nil:
		return nil, InvalidTokenTypeError{Shape: "<nil>"}
	case *RequestConfig:
		if c == nil || c.Token == nil {
			return nil, InvalidTokenTypeError{Shape: "*credential.RequestConfig with no embedded token"}
		}
		return AcceptExternal(c.Token)
	case RequestConfig:
		if c.Token == nil {
			return nil, InvalidTokenTypeError{Shape: "credential.RequestConfig with no embedded token"}
		}
		return AcceptExternal(c.Token)
	case Token:
		// A nil pointer still satisfies the interface; calling through it
		// would dereference nil.
		if isNilValue(c) {
			return nil, InvalidTokenTypeError{Shape: fmt.Sprintf("nil %T", c)}
		}
		if !IsGoogleHost(c.EndpointHost()) {
			return nil, WrongEndpointError{Host: HostOf(c.EndpointHost())}
		}
		return c, nil
	default:
		return nil, InvalidTokenTypeError{Shape: fmt.Sprintf("%T", candidate)}
	}
}

func isNilValue(candidate interface{}) bool {
	v := reflect.ValueOf(candidate)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
