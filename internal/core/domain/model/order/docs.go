// Package order contains the Order aggregate, the fulfillment state
// machine at the heart of the system.
//
// The aggregate owns the shipment sub-record and the tracking history, and
// is the single place where status transitions are validated. Application
// command handlers load an order, call its methods, and persist the result;
// no caller mutates fulfillment state any other way.
package order
