// Package page provides the page-object base: element lookups that wait
// for a readiness condition, act, and convert failures into sentinel
// return values instead of errors.
package page

import "fmt"

// Strategy is a WebDriver locator strategy.
type Strategy string

// Locator strategies understood by the Appium server.
const (
	StrategyID              Strategy = "id"
	StrategyXPath           Strategy = "xpath"
	StrategyAccessibilityID Strategy = "accessibility id"
	StrategyClassName       Strategy = "class name"
	StrategyUIAutomator     Strategy = "-android uiautomator"
	StrategyIOSPredicate    Strategy = "-ios predicate string"
)

// Locator identifies a UI element by strategy and value.
type Locator struct {
	Strategy Strategy
	Value    string
}

// String returns the locator in "strategy=value" form for logs.
func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}

// ByID locates by resource-id (Android) or name (iOS).
func ByID(value string) Locator {
	return Locator{Strategy: StrategyID, Value: value}
}

// ByXPath locates by XPath expression.
func ByXPath(value string) Locator {
	return Locator{Strategy: StrategyXPath, Value: value}
}

// ByAccessibilityID locates by accessibility identifier.
func ByAccessibilityID(value string) Locator {
	return Locator{Strategy: StrategyAccessibilityID, Value: value}
}

// ByClassName locates by widget class name.
func ByClassName(value string) Locator {
	return Locator{Strategy: StrategyClassName, Value: value}
}

// ByUIAutomator locates by an Android UiAutomator selector expression.
func ByUIAutomator(value string) Locator {
	return Locator{Strategy: StrategyUIAutomator, Value: value}
}

// ByIOSPredicate locates by an iOS NSPredicate expression.
func ByIOSPredicate(value string) Locator {
	return Locator{Strategy: StrategyIOSPredicate, Value: value}
}
