// Package interchange converts schema trees to and from the JSON-Schema
// shaped document stored with message templates. Nullability is written as a
// ["null", type] pair, enum entries and object/array defaults travel as JSON
// values, and scalar defaults as their literal form.
package interchange
