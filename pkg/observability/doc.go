/*
Package observability provides monitoring for the Totem engine.

It turns engine lifecycle hooks into Prometheus metrics: sessions started, answers
accepted or rejected per question, and results per category.
*/
package observability
