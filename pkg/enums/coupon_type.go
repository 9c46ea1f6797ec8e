package enums

import (
	"fmt"
	"strings"
)

// CouponType describes how a coupon's discount value is applied to a line.
type CouponType string

const (
	CouponTypeFixed      CouponType = "fixed"
	CouponTypePercentage CouponType = "percentage"
)

var validCouponTypes = []CouponType{
	CouponTypeFixed,
	CouponTypePercentage,
}

// String implements fmt.Stringer.
func (c CouponType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponType.
func (c CouponType) IsValid() bool {
	for _, candidate := range validCouponTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponType converts raw input into a CouponType.
func ParseCouponType(value string) (CouponType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validCouponTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon type %q", value)
}
